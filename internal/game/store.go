package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the in-memory room map. It is the source of truth; the
// database is a durable mirror written after the fact. The single mutex
// serializes all mutations to any given room while letting callers work
// on different rooms freely between updates.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

func (s *Store) CreateRoom(mode Mode, maxRounds int, roundTimeout time.Duration, now time.Time) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &Room{
		ID:           uuid.NewString(),
		Mode:         mode,
		Status:       StatusWaiting,
		Players:      []string{},
		Scores:       make(map[string]int),
		MaxRounds:    maxRounds,
		RoundTimeout: roundTimeout,
	}
	s.rooms[room.ID] = room
	return room
}

// UpdateRoom applies fn to the room under the store lock. fn must not
// block on external calls; persistence happens after the closure returns.
func (s *Store) UpdateRoom(id string, fn func(room *Room) error) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if err := fn(room); err != nil {
		return Room{}, err
	}
	return room.Clone(), nil
}

func (s *Store) Snapshot(id string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return Room{}, false
	}
	return room.Clone(), true
}

func (s *Store) ListSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, RoomSummary{
			ID:          room.ID,
			Mode:        room.Mode,
			Status:      room.Status,
			PlayerCount: len(room.Players),
			RoundNumber: room.RoundNumber,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// StaleInProgress returns ids of rooms whose last action is older than
// the cutoff, for the stalled-room sweep.
func (s *Store) StaleInProgress(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, room := range s.rooms {
		if room.Status == StatusInProgress && room.LastActionTime.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
