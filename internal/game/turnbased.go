package game

import (
	"math/rand"
	"time"

	"teamplay/internal/model"
)

const (
	defaultRoundStartDelay  = 3 * time.Second
	defaultTurnResultsDelay = 5 * time.Second

	// Slack added to the one-shot backup timeout behind the per-second
	// tick. If the tick ever misses, the backup still fires exactly once.
	backupSlack = 2 * time.Second
)

// TurnHooks are the abstract hooks a concrete turn-based game implements.
// Word choice, scoring and action validation live behind them; TurnBased
// owns only generic round/turn bookkeeping.
type TurnHooks interface {
	// OnTurnStart is invoked after the turn index advances. The returned
	// seconds become the initial turn timer; 0 means the configured
	// default turn duration.
	OnTurnStart(ctx Context, playerID string) int
	// OnTurnEnd is invoked when a turn completes normally via EndTurn.
	OnTurnEnd(ctx Context, playerID string)
	// OnTurnTimeout is invoked when the turn timer expires. Returning
	// false means the hook consumed the timeout and restarted the timer
	// (e.g. auto-picking a word); the turn continues.
	OnTurnTimeout(ctx Context, playerID string) bool
}

// TurnBasedConfig configures the generic round/turn machine.
type TurnBasedConfig struct {
	GameID             string
	DefaultRounds      int
	DefaultTurnSeconds int
	RoundStartDelay    time.Duration
	TurnResultsDelay   time.Duration
}

// TurnBased generalizes any game composed of rounds, each containing one
// turn per player. It runs entirely under the owning room's serialization;
// all timers go through the Context so room destruction sweeps them.
type TurnBased struct {
	cfg   TurnBasedConfig
	hooks TurnHooks

	Turn model.TurnState

	// epoch guards the turn timers: every turn boundary bumps it, and a
	// tick or backup callback from a previous turn no-ops.
	epoch       int
	turnSeconds int
	tick        Handle
	backup      Handle
}

// NewTurnBased builds the turn machine for one game instance.
func NewTurnBased(cfg TurnBasedConfig, hooks TurnHooks) *TurnBased {
	if cfg.RoundStartDelay == 0 {
		cfg.RoundStartDelay = defaultRoundStartDelay
	}
	if cfg.TurnResultsDelay == 0 {
		cfg.TurnResultsDelay = defaultTurnResultsDelay
	}
	return &TurnBased{
		cfg:   cfg,
		hooks: hooks,
		Turn:  model.TurnState{CurrentTurnIndex: -1},
	}
}

// Begin starts the game: total rounds from settings, shuffled turn order,
// zeroed scores, then round 1.
func (tb *TurnBased) Begin(ctx Context) {
	tb.Turn.TotalRounds = ctx.Settings().Int("rounds", tb.cfg.DefaultRounds)
	tb.Turn.CurrentRound = 0
	tb.Turn.CurrentTurnIndex = -1

	players := ctx.Players()
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
		ctx.SetScore(p.ID, 0)
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	tb.Turn.TurnOrder = order

	ctx.Broadcast(tb.event("started"), map[string]any{
		"turnOrder":   order,
		"totalRounds": tb.Turn.TotalRounds,
	})
	tb.StartRound(ctx)
}

// StartRound advances the round counter, ending the game once every round
// has been played.
func (tb *TurnBased) StartRound(ctx Context) {
	tb.cancelTimers()
	tb.Turn.CurrentRound++
	tb.Turn.CurrentTurnIndex = -1
	if tb.Turn.CurrentRound > tb.Turn.TotalRounds {
		ctx.EndGame("completed")
		return
	}
	ctx.Broadcast(tb.event("round_start"), map[string]any{
		"round":       tb.Turn.CurrentRound,
		"totalRounds": tb.Turn.TotalRounds,
	})
	ctx.After(tb.cfg.RoundStartDelay, func() { tb.NextTurn(ctx) })
}

// NextTurn advances to the next player's turn, skipping disconnected
// players and rolling into the next round at the end of the order.
func (tb *TurnBased) NextTurn(ctx Context) {
	tb.cancelTimers()
	tb.epoch++
	tb.Turn.CurrentTurnIndex++
	if tb.Turn.CurrentTurnIndex >= len(tb.Turn.TurnOrder) {
		tb.StartRound(ctx)
		return
	}

	playerID := tb.Turn.TurnOrder[tb.Turn.CurrentTurnIndex]
	p, ok := ctx.Player(playerID)
	if !ok || !p.IsConnected {
		ctx.Broadcast(tb.event("turn_skipped"), map[string]any{
			"playerId": playerID,
			"reason":   "disconnected",
		})
		tb.NextTurn(ctx)
		return
	}

	ctx.Broadcast(tb.event("turn_start"), map[string]any{
		"playerId": playerID,
		"round":    tb.Turn.CurrentRound,
	})
	seconds := tb.hooks.OnTurnStart(ctx, playerID)
	if seconds <= 0 {
		seconds = ctx.Settings().Int("turnDurationSeconds", tb.cfg.DefaultTurnSeconds)
	}
	tb.StartTurnTimer(ctx, seconds)
}

// StartTurnTimer arms (or re-arms) the current turn's countdown: a
// repeating one-second tick plus a redundant one-shot backup in case the
// tick is ever missed. Timeout fires exactly once per turn.
func (tb *TurnBased) StartTurnTimer(ctx Context, seconds int) {
	tb.cancelTimers()
	tb.epoch++
	tb.Turn.TurnStartTime = time.Now()
	tb.Turn.TimeRemaining = seconds
	tb.turnSeconds = seconds

	epoch := tb.epoch
	tb.tick = ctx.Every(time.Second, func() {
		if epoch != tb.epoch {
			return
		}
		tb.Turn.TimeRemaining--
		ctx.Broadcast(tb.event("timer"), map[string]any{
			"timeRemainingSeconds": tb.Turn.TimeRemaining,
		})
		if tb.Turn.TimeRemaining <= 0 {
			tb.timeout(ctx, epoch)
		}
	})
	tb.backup = ctx.After(time.Duration(seconds)*time.Second+backupSlack, func() {
		tb.timeout(ctx, epoch)
	})
}

func (tb *TurnBased) timeout(ctx Context, epoch int) {
	if epoch != tb.epoch {
		return
	}
	tb.cancelTimers()
	playerID := tb.Turn.CurrentPlayerID()
	if done := tb.hooks.OnTurnTimeout(ctx, playerID); !done {
		// The hook consumed the timeout and re-armed the timer.
		return
	}
	tb.epoch++
	tb.scheduleNextTurn(ctx)
}

// EndTurn completes the current turn early (e.g. every guesser solved it),
// cancels both timers and schedules the next turn after the results delay.
func (tb *TurnBased) EndTurn(ctx Context) {
	tb.cancelTimers()
	tb.epoch++
	tb.hooks.OnTurnEnd(ctx, tb.Turn.CurrentPlayerID())
	tb.scheduleNextTurn(ctx)
}

func (tb *TurnBased) scheduleNextTurn(ctx Context) {
	ctx.After(tb.cfg.TurnResultsDelay, func() { tb.NextTurn(ctx) })
}

// HandlePlayerLeave removes a departed player from the turn order. If it
// was their turn the turn is skipped immediately; if the connected count
// drops below min the game ends.
func (tb *TurnBased) HandlePlayerLeave(ctx Context, playerID string, min int) {
	wasCurrent := tb.Turn.CurrentPlayerID() == playerID
	for i, id := range tb.Turn.TurnOrder {
		if id == playerID {
			tb.Turn.TurnOrder = append(tb.Turn.TurnOrder[:i], tb.Turn.TurnOrder[i+1:]...)
			if i <= tb.Turn.CurrentTurnIndex {
				tb.Turn.CurrentTurnIndex--
			}
			break
		}
	}
	if ctx.ConnectedCount() < min {
		ctx.EndGame("insufficient_players")
		return
	}
	if wasCurrent && ctx.Active() {
		ctx.Broadcast(tb.event("turn_skipped"), map[string]any{
			"playerId": playerID,
			"reason":   "player_left",
		})
		tb.NextTurn(ctx)
	}
}

// CurrentPlayerID returns the player whose turn is active, or "".
func (tb *TurnBased) CurrentPlayerID() string {
	return tb.Turn.CurrentPlayerID()
}

// IsCurrent reports whether it is playerID's turn.
func (tb *TurnBased) IsCurrent(playerID string) bool {
	return playerID != "" && tb.Turn.CurrentPlayerID() == playerID
}

// Elapsed is the time since the current turn timer was armed.
func (tb *TurnBased) Elapsed() time.Duration {
	return time.Since(tb.Turn.TurnStartTime)
}

// TurnDuration is the length the current turn timer was armed with.
func (tb *TurnBased) TurnDuration() time.Duration {
	return time.Duration(tb.turnSeconds) * time.Second
}

// Stop cancels the turn timers without advancing. Used when the game ends
// mid-turn.
func (tb *TurnBased) Stop() {
	tb.cancelTimers()
	tb.epoch++
}

func (tb *TurnBased) cancelTimers() {
	if tb.tick != nil {
		tb.tick.Cancel()
		tb.tick = nil
	}
	if tb.backup != nil {
		tb.backup.Cancel()
		tb.backup = nil
	}
}

func (tb *TurnBased) event(name string) string {
	return Event(tb.cfg.GameID, name)
}
