package game

import (
	"math/rand/v2"
	"strings"
	"time"
)

// SoundSnatchMode: players name the meme sound being played. Matching is
// case-insensitive and ignores the .mp3 extension; a correct guess draws
// a fresh sound immediately.
type SoundSnatchMode struct{}

const (
	soundRoundDuration = 30 * time.Second
	scorePerSound      = 20
)

var memeSounds = []string{
	"meme1.mp3",
	"meme2.mp3",
	"meme3.mp3",
	"meme4.mp3",
	"meme5.mp3",
}

func (m *SoundSnatchMode) Initialize(room *Room, now time.Time) error {
	room.CurrentSound = randomSound()
	room.LastActionTime = now
	room.Status = StatusInProgress
	return nil
}

func (m *SoundSnatchMode) HandleAction(room *Room, playerID string, action Action, now time.Time) (ActionResult, error) {
	if room.CurrentSound == "" {
		return ActionResult{}, ErrGameNotInitialized
	}

	correct := soundMatches(action.Guess, room.CurrentSound)
	score := 0
	if correct {
		score = scorePerSound
		addScore(room, playerID, score)
		room.CurrentSound = randomSound()
	}

	return ActionResult{
		Correct:   correct,
		Score:     score,
		Advanced:  true,
		NextSound: room.CurrentSound,
	}, nil
}

func (m *SoundSnatchMode) Refresh(room *Room, now time.Time) {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	if now.Sub(last) >= soundRoundDuration {
		room.CurrentSound = randomSound()
		room.LastActionTime = now
	}
}

func (m *SoundSnatchMode) RoundComplete(room *Room, now time.Time) bool {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	return now.Sub(last) >= soundRoundDuration
}

func (m *SoundSnatchMode) RoundProgress(room *Room, now time.Time) float64 {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	progress := float64(now.Sub(last)) / float64(soundRoundDuration) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}

func randomSound() string {
	return memeSounds[rand.IntN(len(memeSounds))]
}

func soundMatches(guess, sound string) bool {
	clean := func(s string) string {
		return strings.TrimSuffix(strings.ToLower(s), ".mp3")
	}
	return clean(guess) == clean(sound)
}
