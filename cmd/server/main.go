package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamplay/internal/cache"
	"teamplay/internal/config"
	"teamplay/internal/game"
	"teamplay/internal/game/sketch"
	"teamplay/internal/repository"
	"teamplay/internal/service"
	"teamplay/internal/transport/rest"
	"teamplay/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Msg("connected to Redis")

	// Game catalog
	registry := game.NewRegistry()
	if err := registry.Register(sketch.NewDefinition()); err != nil {
		log.Fatal().Err(err).Msg("failed to register game")
	}

	// Storage
	resultRepo := repository.NewResultRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)
	recorder := service.NewStoreRecorder(resultRepo, leaderboard)

	// Core wiring
	wsHub := ws.NewHub()
	authSvc := service.NewAuthService(cfg.JWTSecret)
	manager := service.NewRoomManager(registry, wsHub, recorder)
	manager.SetTimings(cfg.ReconnectGrace, cfg.StartCountdown)

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		Manager:     manager,
		Registry:    registry,
		Results:     resultRepo,
		Leaderboard: leaderboard,
		WSHub:       wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
