package game

// Gateway is the persistence/chain collaborator. Implementations may be
// slow or unreliable; the registry never calls it while holding the room
// lock, and failed reward mints are handed to the recovery coordinator
// instead of blocking or rolling back game state.
type Gateway interface {
	PersistRoom(room Room) error
	AddRoomPlayer(roomID, playerID string) error

	PlayerRating(playerID string) (int, error)
	UpdatePlayerRating(playerID string, rating int) error
	UpdatePlayerScore(playerID string, score int) error

	RecordGameResult(roomID, winnerID string, result GameResult) error
	MintReward(playerID string, mode Mode) (string, error)

	PersistQueueEntry(entry QueueEntry) error
	RemoveQueueEntry(playerID string, mode Mode) error
}
