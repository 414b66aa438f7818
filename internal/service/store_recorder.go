package service

import (
	"context"
	"fmt"

	"teamplay/internal/cache"
	"teamplay/internal/model"
	"teamplay/internal/repository"

	"github.com/rs/zerolog/log"
)

// StoreRecorder persists finished game results to MongoDB and folds each
// player's points into the team's all-time Redis leaderboard.
type StoreRecorder struct {
	results     repository.ResultRepo
	leaderboard cache.LeaderboardCache
}

func NewStoreRecorder(results repository.ResultRepo, leaderboard cache.LeaderboardCache) *StoreRecorder {
	return &StoreRecorder{results: results, leaderboard: leaderboard}
}

func (s *StoreRecorder) Record(ctx context.Context, result *model.GameResult) error {
	if err := s.results.Insert(ctx, *result); err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	for _, fs := range result.FinalScores {
		if fs.Score <= 0 {
			continue
		}
		if err := s.leaderboard.AddScore(ctx, result.TeamID, fs.PlayerID, fs.Name, fs.Score); err != nil {
			// Leaderboard is best effort; the result itself is saved.
			log.Warn().Err(err).Str("team", result.TeamID).Str("player", fs.PlayerID).Msg("leaderboard update failed")
		}
	}
	return nil
}
