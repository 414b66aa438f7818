package handler

import (
	"net/http"

	"teamplay/internal/game"

	"github.com/gorilla/mux"
)

// GameHandler serves the game catalog.
type GameHandler struct {
	registry *game.Registry
}

// NewGameHandler creates a new game handler
func NewGameHandler(registry *game.Registry) *GameHandler {
	return &GameHandler{registry: registry}
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"games": h.registry.Available()})
}

// Get handles GET /v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	def, err := h.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game":            def.Info(),
		"defaultSettings": def.DefaultSettings(),
	})
}
