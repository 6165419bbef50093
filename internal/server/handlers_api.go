package server

import (
	"errors"
	"log"
	"net/http"

	"memeclash/internal/game"
)

type createRoomRequest struct {
	Mode string `json:"mode" validate:"required"`
}

type joinRequest struct {
	PlayerID string `json:"player_id" validate:"required,wallet"`
}

type actionRequest struct {
	PlayerID  string `json:"player_id" validate:"required,wallet"`
	Frame     int    `json:"frame"`
	Guess     string `json:"guess"`
	TypedText string `json:"typed_text"`
}

type queueRequest struct {
	PlayerID string `json:"player_id" validate:"required,wallet"`
	Mode     string `json:"mode" validate:"required"`
}

type retryRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required,wallet"`
	Action   string `json:"action" validate:"required"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !s.bind(w, r, &req) {
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown game mode")
		return
	}
	roomID, err := s.registry.CreateRoom(mode)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": roomID})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	summaries := s.registry.Rooms()
	list := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		list = append(list, map[string]any{
			"room_id":      summary.ID,
			"mode":         summary.Mode,
			"status":       summary.Status,
			"player_count": summary.PlayerCount,
			"round_number": summary.RoundNumber,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": list})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := s.registry.Snapshot(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !s.bind(w, r, &req) {
		return
	}
	roomID := r.PathValue("id")
	if err := s.registry.JoinRoom(roomID, req.PlayerID); err != nil {
		s.writeGameError(w, err)
		return
	}
	log.Printf("player joined room_id=%s player=%s", roomID, req.PlayerID)
	writeJSON(w, http.StatusOK, map[string]string{"room_id": roomID})
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.registry.StartGame(r.PathValue("id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleRoomAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !s.bind(w, r, &req) {
		return
	}
	result, err := s.registry.HandleAction(r.PathValue("id"), req.PlayerID, game.Action{
		Frame:     req.Frame,
		Guess:     req.Guess,
		TypedText: req.TypedText,
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"is_correct": result.Correct,
		"score":      result.Score,
		"next_frame": result.NextFrame,
		"next_sound": result.NextSound,
		"accuracy":   result.Accuracy,
		"wpm":        result.WPM,
	})
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !s.bind(w, r, &req) {
		return
	}
	if err := s.recoverer.HandleReconnection(r.PathValue("id"), req.PlayerID); err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reconnected"})
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if !s.bind(w, r, &req) {
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown game mode")
		return
	}
	if err := s.matchmaker.Enqueue(req.PlayerID, mode); err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

func (s *Server) handleDequeue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if !s.bind(w, r, &req) {
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown game mode")
		return
	}
	s.matchmaker.Dequeue(req.PlayerID, mode)
	writeJSON(w, http.StatusOK, map[string]string{"status": "dequeued"})
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	mode, err := game.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown game mode")
		return
	}
	status := s.matchmaker.QueueStatus(mode)
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":            mode,
		"size":            status.Size,
		"average_wait_ms": status.AverageWait.Milliseconds(),
	})
}

func (s *Server) handleRetryTransaction(w http.ResponseWriter, r *http.Request) {
	var req retryRequest
	if !s.bind(w, r, &req) {
		return
	}
	if err := s.recoverer.RetryTransaction(req.RoomID, req.PlayerID, req.Action); err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recovered"})
}

func (s *Server) handleRecoveryState(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state, err := s.recoverer.State(query.Get("room_id"), query.Get("player_id"), query.Get("action"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":    state.RoomID,
		"player_id":  state.PlayerID,
		"action":     state.Action,
		"attempts":   state.Attempts,
		"last_error": state.LastError,
		"updated_at": state.UpdatedAt,
	})
}

func (s *Server) handleRecoveryMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := s.recoverer.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_recoveries":      snapshot.TotalRecoveries,
		"successful_recoveries": snapshot.SuccessfulRecoveries,
		"failed_recoveries":     snapshot.FailedRecoveries,
		"average_recovery_ms":   snapshot.AverageRecoveryTime.Milliseconds(),
	})
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrRecoveryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnknownMode), errors.Is(err, game.ErrUnknownRecoveryAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrRoomNotWaiting),
		errors.Is(err, game.ErrPlayerAlreadyInRoom),
		errors.Is(err, game.ErrInvalidStateForStart),
		errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrGameNotInProgress),
		errors.Is(err, game.ErrGameNotInitialized),
		errors.Is(err, game.ErrAlreadyQueued),
		errors.Is(err, game.ErrMaxRetriesExceeded):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
