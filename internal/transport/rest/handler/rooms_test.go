package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamplay/internal/cache"
	"teamplay/internal/model"
	"teamplay/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaderboard struct {
	top   []cache.LeaderboardEntry
	ranks map[string]int64
}

func (f *fakeLeaderboard) AddScore(ctx context.Context, teamID, playerID, name string, points int) error {
	return nil
}

func (f *fakeLeaderboard) GetTop(ctx context.Context, teamID string, limit int) ([]cache.LeaderboardEntry, error) {
	return f.top, nil
}

func (f *fakeLeaderboard) GetRank(ctx context.Context, teamID, playerID string) (int64, error) {
	if r, ok := f.ranks[playerID]; ok {
		return r, nil
	}
	return -1, nil
}

func leaderboardRequest(t *testing.T, h *RoomHandler, teamID string, id model.Identity) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/v1/teams/{teamId}/leaderboard", h.Leaderboard)

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/"+teamID+"/leaderboard", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLeaderboardIncludesCallerRank(t *testing.T) {
	lb := &fakeLeaderboard{
		top: []cache.LeaderboardEntry{
			{PlayerID: "u1", Name: "Alice", Score: 300, Rank: 1},
			{PlayerID: "u2", Name: "Bob", Score: 120, Rank: 2},
		},
		ranks: map[string]int64{"u2": 2},
	}
	h := NewRoomHandler(nil, nil, lb)

	rec := leaderboardRequest(t, h, "t1", model.Identity{UserID: "u2", Name: "Bob", TeamID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Leaderboard []cache.LeaderboardEntry `json:"leaderboard"`
		YourRank    int64                    `json:"yourRank"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Leaderboard, 2)
	assert.Equal(t, int64(2), resp.YourRank)
}

func TestLeaderboardUnrankedCaller(t *testing.T) {
	h := NewRoomHandler(nil, nil, &fakeLeaderboard{})

	rec := leaderboardRequest(t, h, "t1", model.Identity{UserID: "new", TeamID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		YourRank int64 `json:"yourRank"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(-1), resp.YourRank)
}

func TestLeaderboardRejectsOtherTeam(t *testing.T) {
	h := NewRoomHandler(nil, nil, &fakeLeaderboard{})

	rec := leaderboardRequest(t, h, "t2", model.Identity{UserID: "u1", TeamID: "t1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
