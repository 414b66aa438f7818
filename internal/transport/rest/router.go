package rest

import (
	"net/http"
	"os"

	"teamplay/internal/cache"
	"teamplay/internal/game"
	"teamplay/internal/repository"
	"teamplay/internal/service"
	"teamplay/internal/transport/rest/handler"
	"teamplay/internal/transport/rest/middleware"
	"teamplay/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	Manager     *service.RoomManager
	Registry    *game.Registry
	Results     repository.ResultRepo
	Leaderboard cache.LeaderboardCache
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(c.Registry)
	roomHandler := handler.NewRoomHandler(c.Manager, c.Results, c.Leaderboard)
	wsHandler := ws.NewHandler(c.WSHub, c.Manager, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket entry (token in query param)
	v1.HandleFunc("/ws", wsHandler.Connect).Methods("GET")

	// Authenticated read endpoints
	api := v1.NewRoute().Subrouter()
	api.Use(authMW.RequireUser)

	api.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/rooms", roomHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/teams/{teamId}/rooms", roomHandler.ListByTeam).Methods("GET", "OPTIONS")
	api.HandleFunc("/teams/{teamId}/history", roomHandler.History).Methods("GET", "OPTIONS")
	api.HandleFunc("/teams/{teamId}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
