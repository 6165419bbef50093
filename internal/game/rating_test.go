package game

import "testing"

func TestApplyResultEqualRatings(t *testing.T) {
	gw := newFakeGateway()
	gw.ratings["alice"] = 1000
	gw.ratings["bob"] = 1000
	engine := NewRatingEngine(gw)

	winner, loser, err := engine.ApplyResult("alice", "bob")
	if err != nil {
		t.Fatalf("apply result: %v", err)
	}
	if winner != 1016 || loser != 984 {
		t.Fatalf("expected 1016/984, got %d/%d", winner, loser)
	}
	if gw.ratingWrites["alice"] != 1016 || gw.ratingWrites["bob"] != 984 {
		t.Fatalf("expected ratings persisted, got %v", gw.ratingWrites)
	}
}

func TestApplyResultUnderdogWinsBigger(t *testing.T) {
	gw := newFakeGateway()
	gw.ratings["alice"] = 1000
	gw.ratings["bob"] = 1300
	engine := NewRatingEngine(gw)

	winner, loser, err := engine.ApplyResult("alice", "bob")
	if err != nil {
		t.Fatalf("apply result: %v", err)
	}
	if winner != 1027 || loser != 1273 {
		t.Fatalf("expected 1027/1273 for a 300 point upset, got %d/%d", winner, loser)
	}
}

func TestApplyResultClampsAtBounds(t *testing.T) {
	gw := newFakeGateway()
	gw.ratings["low1"] = 110
	gw.ratings["low2"] = 110
	engine := NewRatingEngine(gw)

	if _, loser, _ := engine.ApplyResult("low1", "low2"); loser != 100 {
		t.Fatalf("expected loser clamped to 100, got %d", loser)
	}

	gw.ratings["high1"] = 2990
	gw.ratings["high2"] = 2990
	if winner, _, _ := engine.ApplyResult("high1", "high2"); winner != 3000 {
		t.Fatalf("expected winner clamped to 3000, got %d", winner)
	}
}

func TestPlayerRatingDefaultsForNewPlayers(t *testing.T) {
	engine := NewRatingEngine(newFakeGateway())
	rating, err := engine.PlayerRating("newcomer")
	if err != nil {
		t.Fatalf("player rating: %v", err)
	}
	if rating != InitialRating {
		t.Fatalf("expected %d for an unseen player, got %d", InitialRating, rating)
	}
}
