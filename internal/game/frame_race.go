package game

import "time"

// FrameRaceMode: players race to call out the frame number currently shown.
// The frame advances once per second on its own, immediately on a correct
// guess, and (a quirk kept from observed behavior) on any guess once the
// frame counter has already reached the round cap.
type FrameRaceMode struct{}

const (
	frameInterval = time.Second
	scorePerFrame = 10
)

func (m *FrameRaceMode) Initialize(room *Room, now time.Time) error {
	room.CurrentFrame = 1
	room.LastActionTime = now
	room.Status = StatusInProgress
	return nil
}

func (m *FrameRaceMode) HandleAction(room *Room, playerID string, action Action, now time.Time) (ActionResult, error) {
	if room.CurrentFrame == 0 {
		return ActionResult{}, ErrGameNotInitialized
	}

	correct := action.Frame == room.CurrentFrame
	score := 0
	if correct {
		score = scorePerFrame
		addScore(room, playerID, score)
	}

	next := room.CurrentFrame
	if correct || room.CurrentFrame >= room.MaxRounds {
		next = room.CurrentFrame + 1
	}
	room.CurrentFrame = next

	return ActionResult{
		Correct:   correct,
		Score:     score,
		Advanced:  true,
		NextFrame: next,
	}, nil
}

func (m *FrameRaceMode) Refresh(room *Room, now time.Time) {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	if now.Sub(last) >= frameInterval {
		room.CurrentFrame++
		room.LastActionTime = now
	}
}

func (m *FrameRaceMode) RoundComplete(room *Room, now time.Time) bool {
	return room.CurrentFrame > room.MaxRounds
}

func (m *FrameRaceMode) RoundProgress(room *Room, now time.Time) float64 {
	if room.MaxRounds == 0 {
		return 0
	}
	progress := float64(room.CurrentFrame) / float64(room.MaxRounds) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}
