package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"memeclash/internal/game"

	"github.com/gorilla/websocket"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{groups: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *wsHub) Add(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.groups[roomID]))
	for conn := range h.groups[roomID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if _, ok := s.registry.Snapshot(roomID); !ok {
		http.NotFound(w, r)
		return
	}
	playerID := r.URL.Query().Get("player_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.Add(roomID, conn)
	log.Printf("socket opened room_id=%s player=%s", roomID, playerID)

	go func() {
		defer func() {
			s.hub.Remove(roomID, conn)
			if playerID != "" {
				if err := s.registry.HandlePlayerDisconnect(roomID, playerID); err != nil {
					log.Printf("disconnect handling failed room_id=%s player=%s error=%v", roomID, playerID, err)
				}
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcastRoomUpdate(room game.Room) {
	s.hub.Broadcast(room.ID, map[string]any{
		"type": "room_update",
		"room": s.roomSnapshot(room),
	})
}
