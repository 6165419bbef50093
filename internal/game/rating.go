package game

import (
	"fmt"
	"math"
)

const (
	kFactor       = 32
	InitialRating = 1000
	minRating     = 100
	maxRating     = 3000
)

// RatingEngine applies Elo-style updates after completed games. Ratings
// live in the durable mirror; matchmaking reads them through the same
// gateway when players enqueue.
type RatingEngine struct {
	gw Gateway
}

func NewRatingEngine(gw Gateway) *RatingEngine {
	return &RatingEngine{gw: gw}
}

func (e *RatingEngine) ApplyResult(winnerID, loserID string) (int, int, error) {
	winnerRating, err := e.PlayerRating(winnerID)
	if err != nil {
		return 0, 0, fmt.Errorf("winner rating: %w", err)
	}
	loserRating, err := e.PlayerRating(loserID)
	if err != nil {
		return 0, 0, fmt.Errorf("loser rating: %w", err)
	}

	winnerExpected := expectedScore(winnerRating, loserRating)
	loserExpected := 1 - winnerExpected

	winnerNew := newRating(winnerRating, winnerExpected, 1)
	loserNew := newRating(loserRating, loserExpected, 0)

	if err := e.gw.UpdatePlayerRating(winnerID, winnerNew); err != nil {
		return 0, 0, fmt.Errorf("update winner rating: %w", err)
	}
	if err := e.gw.UpdatePlayerRating(loserID, loserNew); err != nil {
		return 0, 0, fmt.Errorf("update loser rating: %w", err)
	}
	return winnerNew, loserNew, nil
}

// PlayerRating returns the stored rating, defaulting to InitialRating for
// players the mirror has not seen yet.
func (e *RatingEngine) PlayerRating(playerID string) (int, error) {
	rating, err := e.gw.PlayerRating(playerID)
	if err != nil {
		return 0, err
	}
	if rating == 0 {
		return InitialRating, nil
	}
	return rating, nil
}

func expectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

func newRating(current int, expected, actual float64) int {
	next := current + int(math.Round(kFactor*(actual-expected)))
	if next < minRating {
		return minRating
	}
	if next > maxRating {
		return maxRating
	}
	return next
}
