package server

import (
	"net/http"

	"memeclash/internal/config"
	"memeclash/internal/game"
)

type Server struct {
	registry   *game.Registry
	matchmaker *game.Matchmaker
	recoverer  *game.Recoverer
	cfg        config.Config
	hub        *wsHub
}

// New wires the core together: one store, one injected mode set, one
// registry, with matchmaking and recovery operating against it.
func New(gw game.Gateway, cfg config.Config) *Server {
	return NewWithClock(gw, cfg, game.NewClock())
}

func NewWithClock(gw game.Gateway, cfg config.Config, clock game.Clock) *Server {
	store := game.NewStore()
	registry := game.NewRegistry(store, game.NewModeSet(), gw, clock, cfg)
	recoverer := game.NewRecoverer(registry, gw, clock, game.NewMetrics(), cfg)
	matchmaker := game.NewMatchmaker(registry, gw, clock, cfg)

	s := &Server{
		registry:   registry,
		matchmaker: matchmaker,
		recoverer:  recoverer,
		cfg:        cfg,
		hub:        newWSHub(),
	}
	registry.SetUpdateHook(s.broadcastRoomUpdate)
	registry.SetMintFailureHook(func(roomID, playerID string) {
		// Fire-and-forget handoff; the retry takes its cool-down on the
		// recovery goroutine, not on the game path.
		go func() {
			_ = s.recoverer.RetryTransaction(roomID, playerID, game.RecoveryActionMintBadge)
		}()
	})
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("POST /api/rooms/{id}/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{id}/start", s.handleStartRoom)
	mux.HandleFunc("POST /api/rooms/{id}/actions", s.handleRoomAction)
	mux.HandleFunc("POST /api/rooms/{id}/reconnect", s.handleReconnect)
	mux.HandleFunc("POST /api/queue", s.handleEnqueue)
	mux.HandleFunc("DELETE /api/queue", s.handleDequeue)
	mux.HandleFunc("GET /api/queue/status", s.handleQueueStatus)
	mux.HandleFunc("POST /api/recovery/retry", s.handleRetryTransaction)
	mux.HandleFunc("GET /api/recovery/state", s.handleRecoveryState)
	mux.HandleFunc("GET /api/recovery/metrics", s.handleRecoveryMetrics)
	mux.HandleFunc("GET /ws/rooms/{id}", s.handleWebsocket)
	return mux
}

// Matchmaker exposes the queue for the background scheduler.
func (s *Server) Matchmaker() *game.Matchmaker { return s.matchmaker }

// Recoverer exposes recovery sweeps for the background scheduler.
func (s *Server) Recoverer() *game.Recoverer { return s.recoverer }
