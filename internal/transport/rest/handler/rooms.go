package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teamplay/internal/cache"
	"teamplay/internal/repository"
	"teamplay/internal/service"
	"teamplay/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

const defaultListLimit = 20

// RoomHandler serves room listings and team history endpoints. Room
// mutation happens over the WebSocket; these endpoints are read-only.
type RoomHandler struct {
	manager     *service.RoomManager
	results     repository.ResultRepo
	leaderboard cache.LeaderboardCache
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(manager *service.RoomManager, results repository.ResultRepo, leaderboard cache.LeaderboardCache) *RoomHandler {
	return &RoomHandler{
		manager:     manager,
		results:     results,
		leaderboard: leaderboard,
	}
}

// List handles GET /v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": h.manager.AllRooms()})
}

// ListByTeam handles GET /v1/teams/{teamId}/rooms
func (h *RoomHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.callerTeam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": h.manager.RoomsByTeam(teamID)})
}

// History handles GET /v1/teams/{teamId}/history
func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.callerTeam(w, r)
	if !ok {
		return
	}

	results, err := h.results.ListByTeam(r.Context(), teamID, limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Leaderboard handles GET /v1/teams/{teamId}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	teamID, ok := h.callerTeam(w, r)
	if !ok {
		return
	}

	entries, err := h.leaderboard.GetTop(r.Context(), teamID, limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	resp := map[string]any{"leaderboard": entries}
	if id, ok := middleware.GetIdentity(r.Context()); ok {
		rank, err := h.leaderboard.GetRank(r.Context(), teamID, id.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
			return
		}
		resp["yourRank"] = rank
	}
	writeJSON(w, http.StatusOK, resp)
}

// callerTeam resolves the {teamId} path var and rejects callers from a
// different team.
func (h *RoomHandler) callerTeam(w http.ResponseWriter, r *http.Request) (string, bool) {
	teamID := mux.Vars(r)["teamId"]
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	if id.TeamID != teamID {
		writeError(w, http.StatusForbidden, "not a member of this team")
		return "", false
	}
	return teamID, true
}

func limitParam(r *http.Request) int {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return limit
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
