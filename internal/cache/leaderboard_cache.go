package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache handles Redis ZSET operations for the per-team
// all-time leaderboard. Scores accumulate across games.
type LeaderboardCache interface {
	AddScore(ctx context.Context, teamID, playerID, name string, points int) error
	GetTop(ctx context.Context, teamID string, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, teamID, playerID string) (int64, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) key(teamID string) string {
	return fmt.Sprintf("team:%s:lb", teamID)
}

func (c *leaderboardCache) nameKey(teamID string) string {
	return fmt.Sprintf("team:%s:lb:names", teamID)
}

func (c *leaderboardCache) AddScore(ctx context.Context, teamID, playerID, name string, points int) error {
	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, c.key(teamID), float64(points), playerID)
	pipe.HSet(ctx, c.nameKey(teamID), playerID, name)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, teamID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(teamID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}

	if len(entries) > 0 {
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.PlayerID
		}
		names, err := c.client.HMGet(ctx, c.nameKey(teamID), ids...).Result()
		if err == nil {
			for i, v := range names {
				if s, ok := v.(string); ok {
					entries[i].Name = s
				}
			}
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, teamID, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(teamID), playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
