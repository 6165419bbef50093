package game

import (
	"log"
	"time"

	"memeclash/internal/config"
)

// Registry is the authoritative owner of active rooms. Every mutation to a
// room goes through the store's per-room serialization; external calls
// (persistence, chain) happen strictly after the closure commits.
type Registry struct {
	store  *Store
	modes  *ModeSet
	gw     Gateway
	clock  Clock
	rating *RatingEngine

	maxRounds    int
	roundTimeout time.Duration

	timers timerSet

	// onUpdate is invoked with a room snapshot after every successful
	// mutation; the transport uses it to broadcast state.
	onUpdate func(Room)
	// onMintFailure hands a failed reward mint to the recovery coordinator.
	onMintFailure func(roomID, playerID string)
}

func NewRegistry(store *Store, modes *ModeSet, gw Gateway, clock Clock, cfg config.Config) *Registry {
	return &Registry{
		store:        store,
		modes:        modes,
		gw:           gw,
		clock:        clock,
		rating:       NewRatingEngine(gw),
		maxRounds:    cfg.MaxRounds,
		roundTimeout: time.Duration(cfg.RoundTimeoutSeconds) * time.Second,
		timers:       newTimerSet(),
	}
}

func (r *Registry) SetUpdateHook(fn func(Room)) { r.onUpdate = fn }

func (r *Registry) SetMintFailureHook(fn func(roomID, playerID string)) { r.onMintFailure = fn }

func (r *Registry) CreateRoom(mode Mode) (string, error) {
	if _, err := r.modes.Get(mode); err != nil {
		return "", err
	}
	room := r.store.CreateRoom(mode, r.maxRounds, r.roundTimeout, r.clock.Now())
	r.persist(*room)
	log.Printf("room created room_id=%s mode=%s", room.ID, room.Mode)
	return room.ID, nil
}

func (r *Registry) JoinRoom(roomID, playerID string) error {
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusWaiting {
			return ErrRoomNotWaiting
		}
		if room.HasPlayer(playerID) {
			return ErrPlayerAlreadyInRoom
		}
		room.Players = append(room.Players, playerID)
		room.Scores[playerID] = 0
		return nil
	})
	if err != nil {
		return err
	}
	if err := r.gw.AddRoomPlayer(roomID, playerID); err != nil {
		log.Printf("persist room player failed room_id=%s player=%s error=%v", roomID, playerID, err)
	}
	r.persist(room)
	r.broadcast(room)
	return nil
}

func (r *Registry) StartGame(roomID string) (Room, error) {
	now := r.clock.Now()
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusWaiting {
			return ErrInvalidStateForStart
		}
		if len(room.Players) < 2 {
			return ErrInsufficientPlayers
		}
		strategy, err := r.modes.Get(room.Mode)
		if err != nil {
			return err
		}
		room.Status = StatusStarting
		room.StartTime = now
		return strategy.Initialize(room, now)
	})
	if err != nil {
		return Room{}, err
	}
	r.scheduleRoundTimer(roomID, room.RoundTimeout)
	r.persist(room)
	r.broadcast(room)
	log.Printf("game started room_id=%s mode=%s players=%d", room.ID, room.Mode, len(room.Players))
	return room, nil
}

func (r *Registry) HandleAction(roomID, playerID string, action Action) (ActionResult, error) {
	now := r.clock.Now()
	var result ActionResult
	var roundAdvanced, ended bool
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusInProgress {
			return ErrGameNotInProgress
		}
		strategy, err := r.modes.Get(room.Mode)
		if err != nil {
			return err
		}
		result, err = strategy.HandleAction(room, playerID, action, now)
		if err != nil {
			return err
		}
		if result.Advanced {
			strategy.Refresh(room, now)
		}
		if strategy.RoundComplete(room, now) {
			if room.RoundNumber >= room.MaxRounds {
				r.completeLocked(room)
				ended = true
			} else {
				room.RoundNumber++
				roundAdvanced = true
			}
		}
		return nil
	})
	if err != nil {
		return ActionResult{}, err
	}
	switch {
	case ended:
		r.cancelRoundTimer(roomID)
		r.afterComplete(room)
	case roundAdvanced:
		r.scheduleRoundTimer(roomID, room.RoundTimeout)
		r.persist(room)
	default:
		r.persist(room)
	}
	r.broadcast(room)
	return result, nil
}

// handleRoundTimeout fires when a round timer elapses. The fired timer may
// race a concurrent action or cancellation, so the status is re-checked
// under the room lock before anything happens.
func (r *Registry) handleRoundTimeout(roomID string) {
	var ended bool
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusInProgress {
			return nil
		}
		if room.RoundNumber >= room.MaxRounds {
			r.completeLocked(room)
			ended = true
			return nil
		}
		room.RoundNumber++
		return nil
	})
	if err != nil {
		return
	}
	if room.Status != StatusInProgress && !ended {
		return
	}
	if ended {
		r.cancelRoundTimer(roomID)
		r.afterComplete(room)
	} else {
		r.scheduleRoundTimer(roomID, room.RoundTimeout)
		r.persist(room)
	}
	r.broadcast(room)
}

func (r *Registry) CancelGame(roomID string) error {
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status.Terminal() {
			return nil
		}
		room.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return err
	}
	r.cancelRoundTimer(roomID)
	r.persist(room)
	r.broadcast(room)
	log.Printf("game cancelled room_id=%s", roomID)
	return nil
}

func (r *Registry) HandlePlayerDisconnect(roomID, playerID string) error {
	var cancelled bool
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		for i, id := range room.Players {
			if id == playerID {
				room.Players = append(room.Players[:i], room.Players[i+1:]...)
				break
			}
		}
		if room.Status == StatusInProgress && len(room.Players) < 2 {
			room.Status = StatusCancelled
			cancelled = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if cancelled {
		r.cancelRoundTimer(roomID)
		log.Printf("game cancelled after disconnect room_id=%s player=%s", roomID, playerID)
	}
	r.persist(room)
	r.broadcast(room)
	return nil
}

// ReattachPlayer puts a reconnecting player back into an in-progress room
// without touching their score. It is a no-op for terminal rooms and for
// players already present.
func (r *Registry) ReattachPlayer(roomID, playerID string) error {
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusInProgress {
			return nil
		}
		if room.HasPlayer(playerID) {
			return nil
		}
		room.Players = append(room.Players, playerID)
		if _, ok := room.Scores[playerID]; !ok {
			room.Scores[playerID] = 0
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.persist(room)
	r.broadcast(room)
	return nil
}

// MarkResumed re-asserts an in-progress room after recovery; idempotent.
func (r *Registry) MarkResumed(roomID string) error {
	room, err := r.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != StatusInProgress {
			return nil
		}
		room.Status = StatusInProgress
		return nil
	})
	if err != nil {
		return err
	}
	r.persist(room)
	return nil
}

func (r *Registry) Snapshot(roomID string) (Room, bool) {
	return r.store.Snapshot(roomID)
}

func (r *Registry) Rooms() []RoomSummary {
	return r.store.ListSummaries()
}

func (r *Registry) RoundProgress(roomID string) (float64, error) {
	room, ok := r.store.Snapshot(roomID)
	if !ok {
		return 0, ErrRoomNotFound
	}
	strategy, err := r.modes.Get(room.Mode)
	if err != nil {
		return 0, err
	}
	return strategy.RoundProgress(&room, r.clock.Now()), nil
}

// completeLocked finishes a room in place: Completed status, timer-safe
// winner scan. Runs under the room lock; external calls happen afterwards
// in afterComplete.
func (r *Registry) completeLocked(room *Room) {
	room.Status = StatusCompleted
	maxScore := 0
	for _, playerID := range room.Players {
		if score := room.Scores[playerID]; score > maxScore {
			maxScore = score
			room.Winner = playerID
		}
	}
}

func (r *Registry) afterComplete(room Room) {
	r.persist(room)
	log.Printf("game ended room_id=%s winner=%s", room.ID, room.Winner)
	if room.Winner == "" {
		return
	}

	result := GameResult{Mode: room.Mode, Score: room.Scores[room.Winner]}
	digest, err := r.gw.MintReward(room.Winner, room.Mode)
	if err != nil {
		// The Completed transition stands regardless; retrying the mint is
		// the recovery coordinator's job.
		log.Printf("reward mint failed room_id=%s winner=%s error=%v", room.ID, room.Winner, err)
		if r.onMintFailure != nil {
			r.onMintFailure(room.ID, room.Winner)
		}
	} else {
		result.TxDigest = digest
	}
	if err := r.gw.RecordGameResult(room.ID, room.Winner, result); err != nil {
		log.Printf("record game result failed room_id=%s error=%v", room.ID, err)
	}
	r.applyRatings(room)
}

func (r *Registry) applyRatings(room Room) {
	if len(room.Players) != 2 || room.Winner == "" {
		return
	}
	loser := room.Players[0]
	if loser == room.Winner {
		loser = room.Players[1]
	}
	if _, _, err := r.rating.ApplyResult(room.Winner, loser); err != nil {
		log.Printf("rating update failed room_id=%s winner=%s loser=%s error=%v", room.ID, room.Winner, loser, err)
	}
}

func (r *Registry) persist(room Room) {
	if err := r.gw.PersistRoom(room); err != nil {
		log.Printf("persist room failed room_id=%s error=%v", room.ID, err)
	}
}

func (r *Registry) broadcast(room Room) {
	if r.onUpdate != nil {
		r.onUpdate(room)
	}
}
