package server

import "memeclash/internal/game"

func (s *Server) roomSnapshot(room game.Room) map[string]any {
	snapshot := map[string]any{
		"room_id":      room.ID,
		"mode":         room.Mode,
		"status":       room.Status,
		"players":      room.Players,
		"scores":       room.Scores,
		"round_number": room.RoundNumber,
		"max_rounds":   room.MaxRounds,
		"winner":       room.Winner,
	}
	switch room.Mode {
	case game.ModeFrameRace:
		snapshot["current_frame"] = room.CurrentFrame
	case game.ModeSoundSnatch:
		snapshot["current_sound"] = room.CurrentSound
	case game.ModeTypeClash:
		snapshot["current_text"] = room.CurrentText
	}
	if progress, err := s.registry.RoundProgress(room.ID); err == nil {
		snapshot["round_progress"] = progress
	}
	return snapshot
}
