package game

import (
	"sync"
	"testing"
	"time"

	"memeclash/internal/config"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock drives registry timers deterministically. Advance fires due
// timers outside the clock lock so a callback can arm its successor.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Sleep(d time.Duration) {}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, timer := range c.timers {
			if !timer.stopped && !timer.fired && !timer.at.After(c.now) {
				due = timer
				break
			}
		}
		if due != nil {
			due.fired = true
		}
		c.mu.Unlock()
		if due == nil {
			return
		}
		due.fn()
	}
}

type recordedResult struct {
	roomID   string
	winnerID string
	result   GameResult
}

// fakeGateway records every call and answers reads from in-memory maps.
type fakeGateway struct {
	mu sync.Mutex

	ratings      map[string]int
	ratingWrites map[string]int
	scoreWrites  map[string]int

	mintErr   error
	mintCalls int
	minted    []string

	results       []recordedResult
	queueAdds     []QueueEntry
	queueRemovals []string
	playersAdded  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		ratings:      make(map[string]int),
		ratingWrites: make(map[string]int),
		scoreWrites:  make(map[string]int),
	}
}

func (g *fakeGateway) PersistRoom(room Room) error { return nil }

func (g *fakeGateway) AddRoomPlayer(roomID, playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playersAdded = append(g.playersAdded, playerID)
	return nil
}

func (g *fakeGateway) PlayerRating(playerID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ratings[playerID], nil
}

func (g *fakeGateway) UpdatePlayerRating(playerID string, rating int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ratings[playerID] = rating
	g.ratingWrites[playerID] = rating
	return nil
}

func (g *fakeGateway) UpdatePlayerScore(playerID string, score int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scoreWrites[playerID] = score
	return nil
}

func (g *fakeGateway) RecordGameResult(roomID, winnerID string, result GameResult) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results = append(g.results, recordedResult{roomID: roomID, winnerID: winnerID, result: result})
	return nil
}

func (g *fakeGateway) MintReward(playerID string, mode Mode) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mintCalls++
	if g.mintErr != nil {
		return "", g.mintErr
	}
	g.minted = append(g.minted, playerID)
	return "0xdigest", nil
}

func (g *fakeGateway) PersistQueueEntry(entry QueueEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queueAdds = append(g.queueAdds, entry)
	return nil
}

func (g *fakeGateway) RemoveQueueEntry(playerID string, mode Mode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queueRemovals = append(g.queueRemovals, playerID)
	return nil
}

func (g *fakeGateway) removals() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queueRemovals...)
}

func newTestRegistry(cfg config.Config) (*Registry, *fakeGateway, *fakeClock) {
	gw := newFakeGateway()
	clock := newFakeClock()
	registry := NewRegistry(NewStore(), NewModeSet(), gw, clock, cfg)
	return registry, gw, clock
}

func startTwoPlayerGame(t *testing.T, registry *Registry, mode Mode) string {
	t.Helper()
	roomID, err := registry.CreateRoom(mode)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := registry.JoinRoom(roomID, "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := registry.JoinRoom(roomID, "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if _, err := registry.StartGame(roomID); err != nil {
		t.Fatalf("start game: %v", err)
	}
	return roomID
}
