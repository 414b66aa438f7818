package game

import (
	"time"

	"teamplay/internal/model"
)

// Info is the public metadata of a registered game type.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPlayers  int    `json:"minPlayers"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// Definition is the pluggable contract a game type implements. Definitions
// are registered once at startup and shared; all per-room state lives in
// the Instance a definition produces.
type Definition interface {
	Info() Info
	DefaultSettings() model.GameSettings
	// New creates the per-room game instance. Exactly one instance is
	// bound to a room for its whole lifetime.
	New() Instance
}

// Instance receives the room lifecycle and player actions. Every method is
// invoked under the owning room's serialization; implementations never
// need their own locking.
type Instance interface {
	// CheckStart validates that the game can begin. A non-nil error
	// aborts the start and is surfaced to the host.
	CheckStart(ctx Context) error
	// InitialState builds the state stored in the context when the room
	// transitions to active.
	InitialState(ctx Context) any
	OnStart(ctx Context)
	OnPlayerJoin(ctx Context, p *model.Player)
	OnPlayerLeave(ctx Context, p *model.Player)
	OnPlayerReconnect(ctx Context, p *model.Player)
	OnSettingsUpdate(ctx Context)
	// HandleAction routes a player action into game logic. Player
	// mistakes come back as a failed Result, never an error.
	HandleAction(ctx Context, actor *model.Player, action Action) Result
	// StateFor returns the state view a specific player may see.
	StateFor(ctx Context, playerID string) any
	// FinalResult produces the scoreboard handed to the recorder.
	FinalResult(ctx Context) *model.GameResult
}

// Action is a timestamped player action record.
type Action struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"playerId"`
	Payload  map[string]any `json:"payload"`
	At       time.Time      `json:"at"`
}

// Result is the structured outcome returned to the acting player.
type Result struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK is the successful action result.
func OK() Result { return Result{Success: true} }

// Fail builds a failed action result with a machine code and message.
func Fail(code, msg string) Result {
	return Result{Success: false, Code: code, Error: msg}
}
