package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/VELOCITY6097/valorant-tourney/brackets"
	"github.com/VELOCITY6097/valorant-tourney/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the dashboard domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService *services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, ts *services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tournamentService: ts, logger: logger}
}

// ServeWs upgrades GET /ws/tournaments/{tournamentID} to a live bracket feed.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentIDStr := chi.URLParam(r, "tournamentID")
	tournamentID, err := strconv.Atoi(tournamentIDStr)
	if err != nil || tournamentID <= 0 {
		http.Error(w, "invalid tournamentID", http.StatusBadRequest)
		return
	}

	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: tournamentIDStr,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
