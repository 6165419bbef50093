package game

import (
	"log"
	"sort"
	"sync"
	"time"

	"memeclash/internal/config"
)

// Matchmaker keeps one FIFO queue per mode and pairs players on a fixed
// tick. The rating tolerance widens the longer the head of the queue has
// waited, and a player waiting past the cap is force-matched with whoever
// is next rather than starved.
type Matchmaker struct {
	mu     sync.Mutex
	queues map[Mode][]QueueEntry

	registry *Registry
	gw       Gateway
	clock    Clock

	tick          time.Duration
	baseTolerance int
	toleranceStep int
	maxWait       time.Duration
}

type matchedPair struct {
	mode    Mode
	players [2]string
}

func NewMatchmaker(registry *Registry, gw Gateway, clock Clock, cfg config.Config) *Matchmaker {
	queues := make(map[Mode][]QueueEntry, len(Modes))
	for _, mode := range Modes {
		queues[mode] = nil
	}
	return &Matchmaker{
		queues:        queues,
		registry:      registry,
		gw:            gw,
		clock:         clock,
		tick:          time.Duration(cfg.MatchTickSeconds) * time.Second,
		baseTolerance: cfg.MatchBaseTolerance,
		toleranceStep: cfg.MatchToleranceStep,
		maxWait:       time.Duration(cfg.MatchMaxWaitSeconds) * time.Second,
	}
}

func (m *Matchmaker) Enqueue(playerID string, mode Mode) error {
	// Mode check against the fixed mode list; the queues map is only
	// touched under the lock because Tick rewrites its values.
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	rating, err := m.gw.PlayerRating(playerID)
	if err != nil || rating == 0 {
		rating = InitialRating
	}
	entry := QueueEntry{
		PlayerID:   playerID,
		Rating:     rating,
		EnqueuedAt: m.clock.Now(),
		Mode:       mode,
	}

	m.mu.Lock()
	for _, queued := range m.queues[mode] {
		if queued.PlayerID == playerID {
			m.mu.Unlock()
			return ErrAlreadyQueued
		}
	}
	m.queues[mode] = append(m.queues[mode], entry)
	size := len(m.queues[mode])
	m.mu.Unlock()

	if err := m.gw.PersistQueueEntry(entry); err != nil {
		log.Printf("persist queue entry failed player=%s mode=%s error=%v", playerID, mode, err)
	}
	log.Printf("player queued player=%s mode=%s rating=%d queue_size=%d", playerID, mode, rating, size)
	return nil
}

// Dequeue removes the player from the mode's queue; removing an absent
// player is a no-op.
func (m *Matchmaker) Dequeue(playerID string, mode Mode) {
	m.mu.Lock()
	queue := m.queues[mode]
	for i, entry := range queue {
		if entry.PlayerID == playerID {
			m.queues[mode] = append(queue[:i], queue[i+1:]...)
			log.Printf("player dequeued player=%s mode=%s queue_size=%d", playerID, mode, len(m.queues[mode]))
			break
		}
	}
	m.mu.Unlock()

	if err := m.gw.RemoveQueueEntry(playerID, mode); err != nil {
		log.Printf("remove queue entry failed player=%s mode=%s error=%v", playerID, mode, err)
	}
}

// Tick runs one matchmaking pass over every queue. Pairing decisions and
// queue removals happen atomically under the queue lock; room creation
// runs afterwards so no per-room work blocks other queues.
func (m *Matchmaker) Tick() {
	now := m.clock.Now()

	m.mu.Lock()
	var pairs []matchedPair
	var expired []QueueEntry
	for mode := range m.queues {
		queue := m.queues[mode]
		sort.Slice(queue, func(i, j int) bool {
			return queue[i].EnqueuedAt.Before(queue[j].EnqueuedAt)
		})
		for len(queue) >= 2 {
			i, ok := m.findPartner(queue, now)
			if !ok {
				break
			}
			pairs = append(pairs, matchedPair{
				mode:    mode,
				players: [2]string{queue[0].PlayerID, queue[i].PlayerID},
			})
			queue = append(queue[:i], queue[i+1:]...)
			queue = queue[1:]
		}
		kept := queue[:0]
		for _, entry := range queue {
			if now.Sub(entry.EnqueuedAt) >= m.maxWait {
				expired = append(expired, entry)
				continue
			}
			kept = append(kept, entry)
		}
		m.queues[mode] = kept
	}
	m.mu.Unlock()

	for _, entry := range expired {
		log.Printf("queue entry expired player=%s mode=%s waited=%s", entry.PlayerID, entry.Mode, now.Sub(entry.EnqueuedAt))
		if err := m.gw.RemoveQueueEntry(entry.PlayerID, entry.Mode); err != nil {
			log.Printf("remove queue entry failed player=%s mode=%s error=%v", entry.PlayerID, entry.Mode, err)
		}
	}
	for _, pair := range pairs {
		m.createMatch(pair)
	}
}

// findPartner returns the index of a partner for the queue head, or false
// when no pairing is possible this tick.
func (m *Matchmaker) findPartner(queue []QueueEntry, now time.Time) (int, bool) {
	head := queue[0]
	waited := now.Sub(head.EnqueuedAt)
	tolerance := m.baseTolerance + int(waited/m.tick)*m.toleranceStep

	for i := 1; i < len(queue); i++ {
		diff := head.Rating - queue[i].Rating
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			return i, true
		}
	}

	// Fairness floor: whoever has waited past the cap gets the next entry
	// regardless of rating gap.
	if waited >= m.maxWait {
		return 1, true
	}
	return 0, false
}

func (m *Matchmaker) createMatch(pair matchedPair) {
	roomID, err := m.registry.CreateRoom(pair.mode)
	if err != nil {
		log.Printf("matchmaking create room failed mode=%s error=%v", pair.mode, err)
		return
	}
	for _, playerID := range pair.players {
		if err := m.registry.JoinRoom(roomID, playerID); err != nil {
			log.Printf("matchmaking join failed room_id=%s player=%s error=%v", roomID, playerID, err)
			return
		}
		if err := m.gw.RemoveQueueEntry(playerID, pair.mode); err != nil {
			log.Printf("remove queue entry failed player=%s mode=%s error=%v", playerID, pair.mode, err)
		}
	}
	if _, err := m.registry.StartGame(roomID); err != nil {
		log.Printf("matchmaking start failed room_id=%s error=%v", roomID, err)
		return
	}
	log.Printf("match created room_id=%s mode=%s players=%s,%s", roomID, pair.mode, pair.players[0], pair.players[1])
}

func (m *Matchmaker) QueueStatus(mode Mode) QueueStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue := m.queues[mode]
	if len(queue) == 0 {
		return QueueStatus{}
	}
	now := m.clock.Now()
	var total time.Duration
	for _, entry := range queue {
		total += now.Sub(entry.EnqueuedAt)
	}
	return QueueStatus{
		Size:        len(queue),
		AverageWait: total / time.Duration(len(queue)),
	}
}
