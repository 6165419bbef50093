package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"memeclash/internal/config"
)

func newTestRecoverer(cfg config.Config) (*Recoverer, *Registry, *fakeGateway, *fakeClock) {
	registry, gw, clock := newTestRegistry(cfg)
	return NewRecoverer(registry, gw, clock, NewMetrics(), cfg), registry, gw, clock
}

// inProgressRoom builds a running room directly in the store, with no
// round timer, so tests can advance the clock freely.
func inProgressRoom(t *testing.T, registry *Registry, clock *fakeClock) string {
	t.Helper()
	roomID, err := registry.CreateRoom(ModeFrameRace)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	now := clock.Now()
	_, err = registry.store.UpdateRoom(roomID, func(room *Room) error {
		room.Players = []string{"alice", "bob"}
		room.Scores = map[string]int{"alice": 40, "bob": 0}
		room.Status = StatusInProgress
		room.CurrentFrame = 1
		room.LastActionTime = now
		return nil
	})
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return roomID
}

func TestRetryTransactionPoisonsAfterMaxAttempts(t *testing.T) {
	rec, registry, gw, _ := newTestRecoverer(config.Default())
	roomID, _ := registry.CreateRoom(ModeFrameRace)
	gw.mintErr = errors.New("mint down")

	for attempt := 1; attempt <= 3; attempt++ {
		err := rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge)
		if err == nil || errors.Is(err, ErrMaxRetriesExceeded) {
			t.Fatalf("attempt %d: expected plain failure, got %v", attempt, err)
		}
	}
	if gw.mintCalls != 3 {
		t.Fatalf("expected 3 mint attempts, got %d", gw.mintCalls)
	}

	// The fourth call fails immediately without touching the gateway or
	// the recovery counters.
	if err := rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge); !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got %v", err)
	}
	if gw.mintCalls != 3 {
		t.Fatalf("poisoned key must not reach the gateway, got %d calls", gw.mintCalls)
	}
	if snap := rec.Metrics(); snap.TotalRecoveries != 3 || snap.FailedRecoveries != 3 {
		t.Fatalf("fast-fail must not move the counters, got %+v", snap)
	}

	state, err := rec.State(roomID, "alice", RecoveryActionMintBadge)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Attempts != 3 || state.LastError != "mint down" {
		t.Fatalf("expected 3 recorded attempts, got %+v", state)
	}
}

func TestRetryCapHoldsUnderConcurrentCalls(t *testing.T) {
	rec, registry, gw, _ := newTestRecoverer(config.Default())
	roomID, _ := registry.CreateRoom(ModeFrameRace)
	gw.mintErr = errors.New("mint down")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge)
		}()
	}
	wg.Wait()

	// Attempts are reserved under the lock, so ten racing callers still
	// produce exactly three gateway attempts.
	if gw.mintCalls != 3 {
		t.Fatalf("expected exactly 3 gateway attempts, got %d", gw.mintCalls)
	}
	state, err := rec.State(roomID, "alice", RecoveryActionMintBadge)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Attempts != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", state.Attempts)
	}
}

func TestRetryTransactionSuccessClearsState(t *testing.T) {
	rec, registry, gw, clock := newTestRecoverer(config.Default())
	roomID := inProgressRoom(t, registry, clock)
	gw.mintErr = errors.New("mint down")

	if err := rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge); err == nil {
		t.Fatalf("expected first attempt to fail")
	}

	gw.mintErr = nil
	if err := rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(gw.results) != 1 || gw.results[0].result.Score != 40 {
		t.Fatalf("expected recorded result with score 40, got %+v", gw.results)
	}
	if _, err := rec.State(roomID, "alice", RecoveryActionMintBadge); !errors.Is(err, ErrRecoveryNotFound) {
		t.Fatalf("success must clear recovery state, got %v", err)
	}
}

func TestRetryUpdateScore(t *testing.T) {
	rec, registry, gw, clock := newTestRecoverer(config.Default())
	roomID := inProgressRoom(t, registry, clock)

	if err := rec.RetryTransaction(roomID, "alice", RecoveryActionUpdateScore); err != nil {
		t.Fatalf("retry update score: %v", err)
	}
	if gw.scoreWrites["alice"] != 40 {
		t.Fatalf("expected score 40 written, got %v", gw.scoreWrites)
	}
}

func TestRetryTransactionBadInputs(t *testing.T) {
	rec, registry, _, _ := newTestRecoverer(config.Default())
	roomID, _ := registry.CreateRoom(ModeFrameRace)

	if err := rec.RetryTransaction(roomID, "alice", "teleport"); !errors.Is(err, ErrUnknownRecoveryAction) {
		t.Fatalf("expected ErrUnknownRecoveryAction, got %v", err)
	}
	if err := rec.RetryTransaction("missing", "alice", RecoveryActionMintBadge); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestHandleReconnection(t *testing.T) {
	rec, registry, _, clock := newTestRecoverer(config.Default())

	if err := rec.HandleReconnection("missing", "alice"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	roomID := inProgressRoom(t, registry, clock)
	if err := rec.HandleReconnection(roomID, "carol"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	room, _ := registry.Snapshot(roomID)
	if len(room.Players) != 3 || room.Scores["carol"] != 0 {
		t.Fatalf("expected carol attached with zero score, got %v", room.Players)
	}

	// A second reconnection of the same player is a no-op.
	if err := rec.HandleReconnection(roomID, "carol"); err != nil {
		t.Fatalf("second reconnect: %v", err)
	}
	room, _ = registry.Snapshot(roomID)
	if len(room.Players) != 3 {
		t.Fatalf("reconnect must be idempotent, got %v", room.Players)
	}

	// Reconnecting to a room that never started does nothing.
	waitingID, _ := registry.CreateRoom(ModeFrameRace)
	if err := rec.HandleReconnection(waitingID, "dave"); err != nil {
		t.Fatalf("reconnect waiting: %v", err)
	}
	waiting, _ := registry.Snapshot(waitingID)
	if len(waiting.Players) != 0 {
		t.Fatalf("waiting room must be untouched, got %v", waiting.Players)
	}
}

func TestRecoverGameStateCancelsStale(t *testing.T) {
	rec, registry, _, clock := newTestRecoverer(config.Default())
	roomID := inProgressRoom(t, registry, clock)

	clock.Advance(301 * time.Second)
	if err := rec.RecoverGameState(roomID); err != nil {
		t.Fatalf("recover: %v", err)
	}
	room, _ := registry.Snapshot(roomID)
	if room.Status != StatusCancelled {
		t.Fatalf("stale game must be cancelled, got %s", room.Status)
	}
}

func TestRecoverGameStateResumesLive(t *testing.T) {
	rec, registry, _, clock := newTestRecoverer(config.Default())
	roomID := inProgressRoom(t, registry, clock)

	clock.Advance(10 * time.Second)
	if err := rec.RecoverGameState(roomID); err != nil {
		t.Fatalf("recover: %v", err)
	}
	room, _ := registry.Snapshot(roomID)
	if room.Status != StatusInProgress {
		t.Fatalf("live game must keep running, got %s", room.Status)
	}
}

func TestSweepStalledRooms(t *testing.T) {
	rec, registry, _, clock := newTestRecoverer(config.Default())
	staleID := inProgressRoom(t, registry, clock)
	clock.Advance(301 * time.Second)
	liveID := inProgressRoom(t, registry, clock)

	rec.SweepStalledRooms()

	stale, _ := registry.Snapshot(staleID)
	if stale.Status != StatusCancelled {
		t.Fatalf("expected stale room cancelled, got %s", stale.Status)
	}
	live, _ := registry.Snapshot(liveID)
	if live.Status != StatusInProgress {
		t.Fatalf("expected live room untouched, got %s", live.Status)
	}
}

func TestSweepDropsOldRecoveryStates(t *testing.T) {
	rec, registry, gw, clock := newTestRecoverer(config.Default())
	roomID, _ := registry.CreateRoom(ModeFrameRace)
	gw.mintErr = errors.New("mint down")

	if err := rec.RetryTransaction(roomID, "alice", RecoveryActionMintBadge); err == nil {
		t.Fatalf("expected failure")
	}
	clock.Advance(3601 * time.Second)
	if err := rec.RetryTransaction(roomID, "bob", RecoveryActionMintBadge); err == nil {
		t.Fatalf("expected failure")
	}

	rec.Sweep()

	if _, err := rec.State(roomID, "alice", RecoveryActionMintBadge); !errors.Is(err, ErrRecoveryNotFound) {
		t.Fatalf("old state must be swept, got %v", err)
	}
	if _, err := rec.State(roomID, "bob", RecoveryActionMintBadge); err != nil {
		t.Fatalf("fresh state must survive the sweep, got %v", err)
	}
}

func TestRecoveryMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.Record(true, 100*time.Millisecond)
	metrics.Record(false, 300*time.Millisecond)

	snap := metrics.Snapshot()
	if snap.TotalRecoveries != 2 || snap.SuccessfulRecoveries != 1 || snap.FailedRecoveries != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.AverageRecoveryTime != 200*time.Millisecond {
		t.Fatalf("expected 200ms running average, got %v", snap.AverageRecoveryTime)
	}
}
