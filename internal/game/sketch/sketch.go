// Package sketch implements the word-guessing drawing game on top of the
// generic turn-based abstraction: one player draws a secret word each turn
// while the others race to guess it in chat.
package sketch

import (
	"errors"
	"math/rand"
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"

	"github.com/rs/zerolog/log"
)

const GameID = "sketch"

var ErrNotEnoughPlayers = errors.New("not enough connected players")

type def struct{}

// NewDefinition returns the registrable sketch game definition.
func NewDefinition() game.Definition { return def{} }

func (def) Info() game.Info {
	return game.Info{
		ID:          GameID,
		Name:        "Sketch & Guess",
		Description: "Draw the secret word while your teammates guess it.",
		MinPlayers:  2,
		MaxPlayers:  8,
	}
}

// Scoring, hint cadence and the close-guess heuristic are all settings so
// hosts (and other games reusing the machinery) can tune them.
func (def) DefaultSettings() model.GameSettings {
	return model.GameSettings{
		"rounds":                3,
		"turnDurationSeconds":   80,
		"pickDurationSeconds":   15,
		"wordOptionCount":       3,
		"difficulty":            "normal",
		"customWords":           []string{},
		"maxGuessPoints":        500,
		"minGuessPoints":        100,
		"drawerGuessBonus":      50,
		"drawerAllGuessedBonus": 100,
		"closeGuessMinLength":   2,
		"hintRevealPoints":      []int{45, 20},
	}
}

func (d def) New() game.Instance {
	g := &Game{st: newState()}
	g.tb = game.NewTurnBased(game.TurnBasedConfig{
		GameID:             GameID,
		DefaultRounds:      3,
		DefaultTurnSeconds: 80,
	}, g)
	return g
}

// Game is the per-room sketch instance. All methods run under the owning
// room's serialization.
type Game struct {
	tb *game.TurnBased
	st *state
}

func (g *Game) CheckStart(ctx game.Context) error {
	if ctx.ConnectedCount() < g.minPlayers() {
		return ErrNotEnoughPlayers
	}
	return nil
}

func (g *Game) InitialState(ctx game.Context) any {
	g.st = newState()
	return g.st
}

func (g *Game) OnStart(ctx game.Context) {
	g.st.Phase = PhaseRoundStart
	g.tb.Begin(ctx)
}

func (g *Game) OnPlayerJoin(ctx game.Context, p *model.Player) {
	// Rooms reject new joins while a game is active; nothing to do.
}

func (g *Game) OnPlayerLeave(ctx game.Context, p *model.Player) {
	delete(g.st.Guessed, p.ID)
	g.tb.HandlePlayerLeave(ctx, p.ID, g.minPlayers())
}

func (g *Game) OnPlayerReconnect(ctx game.Context, p *model.Player) {
	g.systemChat(ctx, p.Name+" is back")
}

func (g *Game) OnSettingsUpdate(ctx game.Context) {
	// Settings are locked once a game is active; defaults-merge happens
	// in the lobby before this instance runs a turn.
}

// OnTurnStart opens the word-pick window for the new drawer.
func (g *Game) OnTurnStart(ctx game.Context, playerID string) int {
	st := g.st
	st.Phase = PhasePickingWord
	st.DrawerID = playerID
	st.Word = ""
	st.Hint = ""
	st.HintsRevealed = 0
	st.Strokes = nil
	st.Guessed = make(map[string]bool)
	st.turnPoints = make(map[string]int)
	st.letterOrder = nil
	g.cancelHintTimers()

	settings := ctx.Settings()
	st.WordOptions = pickWords(
		settings.Int("wordOptionCount", 3),
		settings.String("difficulty", "normal"),
		settings.Strings("customWords"),
	)
	pickSeconds := settings.Int("pickDurationSeconds", 15)

	ctx.SendToPlayer(playerID, g.event("word_options"), map[string]any{
		"options": st.WordOptions,
		"seconds": pickSeconds,
	})
	ctx.BroadcastExcept(g.event("picking_word"), map[string]any{
		"drawerId": playerID,
		"seconds":  pickSeconds,
	}, playerID)
	return pickSeconds
}

// OnTurnTimeout fires for both windows: an expired pick window auto-picks
// a word on the drawer's behalf and keeps the turn alive; an expired
// drawing window ends the turn.
func (g *Game) OnTurnTimeout(ctx game.Context, playerID string) bool {
	switch g.st.Phase {
	case PhasePickingWord:
		if len(g.st.WordOptions) == 0 {
			g.finishTurn(ctx, "timeout")
			return true
		}
		idx := rand.Intn(len(g.st.WordOptions))
		log.Debug().Str("room", ctx.RoomCode()).Str("drawer", playerID).
			Msg("pick window expired, auto-picking word")
		g.applyWordPick(ctx, idx)
		return false
	case PhaseDrawing:
		g.finishTurn(ctx, "timeout")
		return true
	default:
		// Stale timer racing a phase change; treat the turn as over.
		return true
	}
}

func (g *Game) OnTurnEnd(ctx game.Context, playerID string) {
	g.finishTurn(ctx, "all_guessed")
}

// applyWordPick commits a word choice (player-made or automatic), starts
// the drawing window and schedules hint reveals.
func (g *Game) applyWordPick(ctx game.Context, idx int) {
	st := g.st
	st.Word = st.WordOptions[idx]
	st.WordOptions = nil
	st.letterOrder = letterPositions(st.Word)
	st.Hint = maskWord(st.Word, st.letterOrder, 0)
	st.Phase = PhaseDrawing
	st.wordsPlayed++

	drawSeconds := ctx.Settings().Int("turnDurationSeconds", 80)
	g.tb.StartTurnTimer(ctx, drawSeconds)
	g.scheduleHints(ctx, drawSeconds)

	ctx.SendToPlayer(st.DrawerID, g.event("word"), map[string]any{"word": st.Word})
	ctx.BroadcastExcept(g.event("drawing_start"), map[string]any{
		"drawerId": st.DrawerID,
		"hint":     st.Hint,
		"seconds":  drawSeconds,
	}, st.DrawerID)
}

// scheduleHints arms one reveal per configured reveal point (seconds
// remaining on the clock).
func (g *Game) scheduleHints(ctx game.Context, totalSeconds int) {
	g.cancelHintTimers()
	points := ctx.Settings().Ints("hintRevealPoints")
	word := g.st.Word
	for _, remaining := range points {
		if remaining <= 0 || remaining >= totalSeconds {
			continue
		}
		delay := time.Duration(totalSeconds-remaining) * time.Second
		h := ctx.After(delay, func() {
			st := g.st
			if st.Phase != PhaseDrawing || st.Word != word {
				return
			}
			st.HintsRevealed++
			st.Hint = maskWord(st.Word, st.letterOrder, st.HintsRevealed)
			ctx.BroadcastExcept(g.event("hint"), map[string]any{
				"hint": st.Hint,
			}, st.DrawerID)
		})
		g.st.hintTimers = append(g.st.hintTimers, h)
	}
}

// finishTurn reveals the word and moves to the results display.
func (g *Game) finishTurn(ctx game.Context, reason string) {
	st := g.st
	g.cancelHintTimers()
	st.Phase = PhaseTurnResults
	st.LastTurn = &TurnResult{
		Word:     st.Word,
		DrawerID: st.DrawerID,
		Reason:   reason,
		Points:   st.turnPoints,
	}
	ctx.Broadcast(g.event("turn_result"), map[string]any{
		"result":     st.LastTurn,
		"scoreboard": ctx.Scoreboard(),
	})
}

func (g *Game) FinalResult(ctx game.Context) *model.GameResult {
	g.st.Phase = PhaseGameOver
	board := ctx.Scoreboard()
	scores := make([]model.FinalScore, len(board))
	for i, e := range board {
		scores[i] = model.FinalScore{PlayerID: e.PlayerID, Name: e.Name, Score: e.Score}
	}
	model.RankScores(scores)
	result := &model.GameResult{
		GameID:      GameID,
		FinalScores: scores,
		Stats: map[string]any{
			"roundsPlayed":   g.tb.Turn.CurrentRound,
			"wordsPlayed":    g.st.wordsPlayed,
			"correctGuesses": g.st.correctGuesses,
		},
	}
	if len(scores) > 0 {
		result.WinnerID = scores[0].PlayerID
	}
	return result
}

func (g *Game) cancelHintTimers() {
	for _, h := range g.st.hintTimers {
		h.Cancel()
	}
	g.st.hintTimers = nil
}

func (g *Game) minPlayers() int { return def{}.Info().MinPlayers }

func (g *Game) event(name string) string { return game.Event(GameID, name) }
