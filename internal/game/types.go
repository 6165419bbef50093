package game

import "time"

type Mode string

const (
	ModeFrameRace   Mode = "FRAME_RACE"
	ModeSoundSnatch Mode = "SOUND_SNATCH"
	ModeTypeClash   Mode = "TYPE_CLASH"
)

// Modes lists every playable mode in a stable order.
var Modes = []Mode{ModeFrameRace, ModeSoundSnatch, ModeTypeClash}

func ParseMode(raw string) (Mode, error) {
	for _, mode := range Modes {
		if string(mode) == raw {
			return mode, nil
		}
	}
	return "", ErrUnknownMode
}

type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusStarting   Status = "STARTING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Room is the authoritative state of one match. It is owned by the Store;
// all mutations go through Store.UpdateRoom so that actions on the same
// room are serialized while distinct rooms proceed in parallel.
type Room struct {
	ID           string
	Mode         Mode
	Status       Status
	Players      []string // wallet addresses in join order
	Scores       map[string]int
	RoundNumber  int
	MaxRounds    int
	RoundTimeout time.Duration

	// Exactly one of these is populated, depending on Mode.
	CurrentFrame int
	CurrentSound string
	CurrentText  string

	LastActionTime time.Time
	StartTime      time.Time
	Winner         string
}

func (r *Room) HasPlayer(playerID string) bool {
	for _, id := range r.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out past the store lock.
func (r *Room) Clone() Room {
	out := *r
	out.Players = append([]string(nil), r.Players...)
	out.Scores = make(map[string]int, len(r.Scores))
	for id, score := range r.Scores {
		out.Scores[id] = score
	}
	return out
}

type RoomSummary struct {
	ID          string
	Mode        Mode
	Status      Status
	PlayerCount int
	RoundNumber int
}

// Action carries one player submission; the field read depends on the
// room's mode.
type Action struct {
	Frame     int
	Guess     string
	TypedText string
}

type ActionResult struct {
	Correct  bool
	Score    int
	Advanced bool // the mode-specific value moved forward

	NextFrame int
	NextSound string

	Accuracy float64
	WPM      int
}

// GameResult is what gets recorded against the durable mirror when a
// room completes.
type GameResult struct {
	Mode     Mode
	Score    int
	TxDigest string
}

// QueueEntry is one player waiting to be matched for a specific mode.
type QueueEntry struct {
	PlayerID   string
	Rating     int
	EnqueuedAt time.Time
	Mode       Mode
}

type QueueStatus struct {
	Size        int
	AverageWait time.Duration
}
