package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"memeclash/internal/config"
)

const (
	RecoveryActionMintBadge   = "mintBadge"
	RecoveryActionUpdateScore = "updateScore"
)

// RecoveryState tracks the bounded retry of one failed side effect, keyed
// by room, player and action.
type RecoveryState struct {
	RoomID    string
	PlayerID  string
	Action    string
	Attempts  int
	LastError string
	UpdatedAt time.Time
}

// Recoverer handles reconnections, stalled games and bounded transaction
// replay. Retries use a fixed cool-down between attempts and give up for
// good after the attempt cap.
type Recoverer struct {
	mu     sync.Mutex
	states map[string]*RecoveryState

	registry *Registry
	gw       Gateway
	clock    Clock
	metrics  *Metrics

	maxAttempts int
	retryDelay  time.Duration
	staleAfter  time.Duration
	sweepAfter  time.Duration
}

func NewRecoverer(registry *Registry, gw Gateway, clock Clock, metrics *Metrics, cfg config.Config) *Recoverer {
	return &Recoverer{
		states:      make(map[string]*RecoveryState),
		registry:    registry,
		gw:          gw,
		clock:       clock,
		metrics:     metrics,
		maxAttempts: cfg.RetryMaxAttempts,
		retryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		staleAfter:  time.Duration(cfg.StaleGameSeconds) * time.Second,
		sweepAfter:  time.Duration(cfg.RecoverySweepSeconds) * time.Second,
	}
}

func recoveryKey(roomID, playerID, action string) string {
	return roomID + ":" + playerID + ":" + action
}

// HandleReconnection re-adds a disconnected player to an in-progress
// room. Terminal rooms and already-present players make this a no-op.
func (rc *Recoverer) HandleReconnection(roomID, playerID string) error {
	start := rc.clock.Now()
	room, ok := rc.registry.Snapshot(roomID)
	if !ok {
		rc.metrics.Record(false, rc.clock.Now().Sub(start))
		return ErrRoomNotFound
	}
	if room.Status != StatusInProgress {
		log.Printf("reconnect skipped room_id=%s player=%s status=%s", roomID, playerID, room.Status)
		rc.metrics.Record(true, rc.clock.Now().Sub(start))
		return nil
	}
	if err := rc.registry.ReattachPlayer(roomID, playerID); err != nil {
		rc.metrics.Record(false, rc.clock.Now().Sub(start))
		return err
	}
	log.Printf("player reconnected room_id=%s player=%s", roomID, playerID)
	rc.metrics.Record(true, rc.clock.Now().Sub(start))
	return nil
}

// RecoverGameState inspects an in-progress room after a restart or error:
// stale rooms are cancelled, live ones re-asserted as in progress.
func (rc *Recoverer) RecoverGameState(roomID string) error {
	start := rc.clock.Now()
	room, ok := rc.registry.Snapshot(roomID)
	if !ok {
		rc.metrics.Record(false, rc.clock.Now().Sub(start))
		return ErrRoomNotFound
	}
	if room.Status != StatusInProgress {
		rc.metrics.Record(true, rc.clock.Now().Sub(start))
		return nil
	}

	if rc.clock.Now().Sub(room.LastActionTime) > rc.staleAfter {
		log.Printf("stale game cancelled room_id=%s idle=%s", roomID, rc.clock.Now().Sub(room.LastActionTime))
		if err := rc.registry.CancelGame(roomID); err != nil {
			rc.metrics.Record(false, rc.clock.Now().Sub(start))
			return err
		}
	} else {
		if err := rc.registry.MarkResumed(roomID); err != nil {
			rc.metrics.Record(false, rc.clock.Now().Sub(start))
			return err
		}
	}
	rc.metrics.Record(true, rc.clock.Now().Sub(start))
	return nil
}

// RetryTransaction replays one failed side effect for the given key. After
// maxAttempts failures the key is poisoned and every further call fails
// immediately with ErrMaxRetriesExceeded without touching the gateway.
func (rc *Recoverer) RetryTransaction(roomID, playerID, action string) error {
	start := rc.clock.Now()
	key := recoveryKey(roomID, playerID, action)

	rc.mu.Lock()
	state, ok := rc.states[key]
	if !ok {
		state = &RecoveryState{
			RoomID:    roomID,
			PlayerID:  playerID,
			Action:    action,
			UpdatedAt: rc.clock.Now(),
		}
		rc.states[key] = state
	}
	if state.Attempts >= rc.maxAttempts {
		rc.mu.Unlock()
		log.Printf("retry abandoned key=%s attempts=%d", key, rc.maxAttempts)
		return ErrMaxRetriesExceeded
	}
	// Reserve the attempt before dispatching so concurrent calls for the
	// same key can never push past the cap together.
	state.Attempts++
	attempt := state.Attempts
	state.UpdatedAt = rc.clock.Now()
	rc.mu.Unlock()

	log.Printf("retrying transaction key=%s attempt=%d", key, attempt)
	err := rc.dispatch(roomID, playerID, action)
	if err == nil {
		rc.mu.Lock()
		delete(rc.states, key)
		rc.mu.Unlock()
		rc.metrics.Record(true, rc.clock.Now().Sub(start))
		return nil
	}

	rc.mu.Lock()
	state.LastError = err.Error()
	state.UpdatedAt = rc.clock.Now()
	rc.mu.Unlock()
	rc.metrics.Record(false, rc.clock.Now().Sub(start))

	// Fixed cool-down before handing the error back; the caller decides
	// whether to re-invoke.
	rc.clock.Sleep(rc.retryDelay)
	return fmt.Errorf("retry %s: %w", action, err)
}

func (rc *Recoverer) dispatch(roomID, playerID, action string) error {
	switch action {
	case RecoveryActionMintBadge:
		return rc.retryMintBadge(roomID, playerID)
	case RecoveryActionUpdateScore:
		return rc.retryUpdateScore(roomID, playerID)
	default:
		return ErrUnknownRecoveryAction
	}
}

func (rc *Recoverer) retryMintBadge(roomID, playerID string) error {
	room, ok := rc.registry.Snapshot(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	digest, err := rc.gw.MintReward(playerID, room.Mode)
	if err != nil {
		return err
	}
	return rc.gw.RecordGameResult(roomID, playerID, GameResult{
		Mode:     room.Mode,
		Score:    room.Scores[playerID],
		TxDigest: digest,
	})
}

func (rc *Recoverer) retryUpdateScore(roomID, playerID string) error {
	room, ok := rc.registry.Snapshot(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	return rc.gw.UpdatePlayerScore(playerID, room.Scores[playerID])
}

// Sweep drops recovery states untouched for longer than the sweep window,
// whatever their attempt count. A recovery that could still succeed may be
// dropped with them; unbounded growth is the worse outcome.
func (rc *Recoverer) Sweep() {
	cutoff := rc.clock.Now().Add(-rc.sweepAfter)
	rc.mu.Lock()
	cleaned := 0
	for key, state := range rc.states {
		if state.UpdatedAt.Before(cutoff) {
			delete(rc.states, key)
			cleaned++
		}
	}
	rc.mu.Unlock()
	if cleaned > 0 {
		log.Printf("recovery sweep removed=%d", cleaned)
	}
}

// SweepStalledRooms cancels in-progress rooms that have gone quiet past
// the staleness window.
func (rc *Recoverer) SweepStalledRooms() {
	cutoff := rc.clock.Now().Add(-rc.staleAfter)
	for _, roomID := range rc.registry.store.StaleInProgress(cutoff) {
		if err := rc.RecoverGameState(roomID); err != nil {
			log.Printf("stalled room recovery failed room_id=%s error=%v", roomID, err)
		}
	}
}

func (rc *Recoverer) Metrics() MetricsSnapshot {
	return rc.metrics.Snapshot()
}

func (rc *Recoverer) State(roomID, playerID, action string) (RecoveryState, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	state, ok := rc.states[recoveryKey(roomID, playerID, action)]
	if !ok {
		return RecoveryState{}, ErrRecoveryNotFound
	}
	return *state, nil
}
