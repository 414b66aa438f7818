package game

import (
	"time"

	"teamplay/internal/model"
)

// Handle cancels a scheduled timer. Cancelling twice, or cancelling after
// the timer has fired, is a no-op.
type Handle interface {
	Cancel()
}

// ScoreEntry is one scoreboard row, ordered descending by score with ties
// broken by player join order.
type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// Context is the capability object handed to game logic. It decouples
// games from the transport and room bookkeeping: everything a game can
// observe or effect goes through it. All methods are only legal from game
// hooks and timer callbacks, which the room serializes.
type Context interface {
	// Room and player accessors.
	RoomCode() string
	GameID() string
	HostID() string
	Players() []*model.Player // ordered by join time
	Player(id string) (*model.Player, bool)
	ConnectedCount() int
	Settings() model.GameSettings

	// Event delivery. Game-specific events should be namespaced as
	// "<gameId>:<event>"; Event builds that name.
	Broadcast(event string, data any)
	BroadcastExcept(event string, data any, excludeIDs ...string)
	SendToPlayer(playerID, event string, data any)
	SendToPlayers(playerIDs []string, event string, data any)

	// Game state owned by the active instance.
	State() any
	SetState(state any)

	// Scoring.
	AddScore(playerID string, delta int) int
	SetScore(playerID string, score int)
	Score(playerID string) int
	Scoreboard() []ScoreEntry

	// Timers. Every outstanding handle is force-cancelled when EndGame
	// is called or the room is destroyed.
	After(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle

	// EndGame flips the context inactive and notifies the room manager.
	// Finalization runs as a separate event after the current handler
	// returns.
	EndGame(reason string)
	Active() bool
}

// Event returns the namespaced event name "<gameID>:<name>".
func Event(gameID, name string) string {
	return gameID + ":" + name
}
