package game

import "time"

// Strategy is the per-mode rule set. Implementations mutate the room they
// are handed; the registry only calls them while holding the room's lock.
type Strategy interface {
	// Initialize seeds the mode-specific value and moves the room into play.
	Initialize(room *Room, now time.Time) error
	// HandleAction validates one player submission against the current value.
	HandleAction(room *Room, playerID string, action Action, now time.Time) (ActionResult, error)
	// Refresh draws a fresh value when the mode's interval has elapsed.
	Refresh(room *Room, now time.Time)
	RoundComplete(room *Room, now time.Time) bool
	RoundProgress(room *Room, now time.Time) float64
}

// ModeSet maps modes to their strategies. It is built once at startup and
// injected wherever strategies are needed; there is no global instance.
type ModeSet struct {
	strategies map[Mode]Strategy
}

func NewModeSet() *ModeSet {
	return &ModeSet{
		strategies: map[Mode]Strategy{
			ModeFrameRace:   &FrameRaceMode{},
			ModeSoundSnatch: &SoundSnatchMode{},
			ModeTypeClash:   &TypeClashMode{},
		},
	}
}

func (m *ModeSet) Get(mode Mode) (Strategy, error) {
	strategy, ok := m.strategies[mode]
	if !ok {
		return nil, ErrUnknownMode
	}
	return strategy, nil
}

func addScore(room *Room, playerID string, delta int) {
	if room.Scores == nil {
		room.Scores = make(map[string]int)
	}
	room.Scores[playerID] += delta
}
