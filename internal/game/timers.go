package game

import (
	"sync"
	"time"
)

// timerSet tracks the single armed round timer per room. Arming always
// stops the previous timer first, so rapid state changes can never leave
// two timers racing for the same room.
type timerSet struct {
	mu     sync.Mutex
	timers map[string]Timer
}

func newTimerSet() timerSet {
	return timerSet{timers: make(map[string]Timer)}
}

func (r *Registry) scheduleRoundTimer(roomID string, d time.Duration) {
	r.timers.mu.Lock()
	defer r.timers.mu.Unlock()
	if existing, ok := r.timers.timers[roomID]; ok {
		existing.Stop()
	}
	r.timers.timers[roomID] = r.clock.AfterFunc(d, func() {
		r.handleRoundTimeout(roomID)
	})
}

func (r *Registry) cancelRoundTimer(roomID string) {
	r.timers.mu.Lock()
	defer r.timers.mu.Unlock()
	if timer, ok := r.timers.timers[roomID]; ok {
		timer.Stop()
		delete(r.timers.timers, roomID)
	}
}

// armedTimers reports how many round timers are currently armed.
func (r *Registry) armedTimers() int {
	r.timers.mu.Lock()
	defer r.timers.mu.Unlock()
	return len(r.timers.timers)
}
