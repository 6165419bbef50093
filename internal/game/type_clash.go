package game

import (
	"math"
	"math/rand/v2"
	"time"
)

// TypeClashMode: players type the shown meme text as fast as they can.
// Correctness is an exact match, but score is typedLength x accuracy, so a
// long partially-right answer still earns points. Accuracy counts matching
// positions over the shorter of the two strings yet divides by the target
// length, and WPM assumes a fixed one-minute window; both formulas are kept
// as observed.
type TypeClashMode struct{}

const (
	typeRoundDuration = 60 * time.Second
	scorePerCharacter = 1
)

var memeTexts = []string{
	"Never gonna give you up",
	"What are you doing step bro",
	"It's over 9000",
	"I'm not a cat",
	"This is fine",
	"Hello there",
	"I am the senate",
	"Do you know da wae",
	"It's free real estate",
	"I'm in this photo and I don't like it",
}

func (m *TypeClashMode) Initialize(room *Room, now time.Time) error {
	room.CurrentText = randomText()
	room.LastActionTime = now
	room.Status = StatusInProgress
	return nil
}

func (m *TypeClashMode) HandleAction(room *Room, playerID string, action Action, now time.Time) (ActionResult, error) {
	if room.CurrentText == "" {
		return ActionResult{}, ErrGameNotInitialized
	}

	correct, accuracy, wpm := evaluateTyping(action.TypedText, room.CurrentText)
	score := int(math.Floor(float64(len(action.TypedText)) * scorePerCharacter * accuracy))
	if score > 0 {
		addScore(room, playerID, score)
	}

	return ActionResult{
		Correct:  correct,
		Score:    score,
		Accuracy: accuracy,
		WPM:      wpm,
	}, nil
}

func (m *TypeClashMode) Refresh(room *Room, now time.Time) {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	if now.Sub(last) >= typeRoundDuration {
		room.CurrentText = randomText()
		room.LastActionTime = now
	}
}

func (m *TypeClashMode) RoundComplete(room *Room, now time.Time) bool {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	return now.Sub(last) >= typeRoundDuration
}

func (m *TypeClashMode) RoundProgress(room *Room, now time.Time) float64 {
	last := room.LastActionTime
	if last.IsZero() {
		last = now
	}
	progress := float64(now.Sub(last)) / float64(typeRoundDuration) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}

func randomText() string {
	return memeTexts[rand.IntN(len(memeTexts))]
}

func evaluateTyping(typed, target string) (correct bool, accuracy float64, wpm int) {
	correct = typed == target
	if len(typed) == 0 {
		return correct, 0, 0
	}

	matched := 0
	limit := min(len(typed), len(target))
	for i := 0; i < limit; i++ {
		if typed[i] == target[i] {
			matched++
		}
	}
	accuracy = float64(matched) / float64(len(target))

	// Standard word length is five characters; the window is a flat minute.
	words := float64(len(typed)) / 5
	wpm = int(math.Round(words))
	return correct, accuracy, wpm
}
