package model

import (
	"sort"
	"time"
)

// FinalScore is one row of a game's final scoreboard.
type FinalScore struct {
	PlayerID string `json:"playerId" bson:"playerId"`
	Name     string `json:"name" bson:"name"`
	Score    int    `json:"score" bson:"score"`
	Rank     int    `json:"rank" bson:"rank"`
}

// GameResult is produced exactly once when a game ends and handed to the
// external recorder. The core does not write history itself.
type GameResult struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	RoomCode    string         `json:"roomCode" bson:"roomCode"`
	GameID      string         `json:"gameId" bson:"gameId"`
	TeamID      string         `json:"teamId" bson:"teamId"`
	WinnerID    string         `json:"winnerId" bson:"winnerId"`
	FinalScores []FinalScore   `json:"finalScores" bson:"finalScores"`
	Stats       map[string]any `json:"stats" bson:"stats"`
	DurationMs  int64          `json:"durationMs" bson:"durationMs"`
	EndedAt     time.Time      `json:"endedAt" bson:"endedAt"`
}

// RankScores sorts scores descending and assigns 1-based ranks. The sort
// is stable, so equal scores keep their incoming (join) order.
func RankScores(scores []FinalScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
}
