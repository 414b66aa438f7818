package sketch

import (
	"testing"
	"time"

	"teamplay/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTurn boots a game with the given players and advances it to the
// picking phase. The returned drawer is whoever the shuffle chose first.
func startTurn(t *testing.T, playerIDs ...string) (*Game, *fakeContext, string) {
	t.Helper()
	ctx := newFakeContext(playerIDs...)
	g := NewDefinition().New().(*Game)
	ctx.SetState(g.InitialState(ctx))
	g.OnStart(ctx)
	require.True(t, ctx.fireNextAfter(), "round start delay should be armed")
	require.Equal(t, PhasePickingWord, g.st.Phase)
	return g, ctx, g.st.DrawerID
}

func act(g *Game, ctx *fakeContext, playerID, actionType string, payload map[string]any) game.Result {
	p, _ := ctx.Player(playerID)
	return g.HandleAction(ctx, p, game.Action{
		Type:     actionType,
		PlayerID: playerID,
		Payload:  payload,
		At:       time.Now(),
	})
}

func pickFirstWord(t *testing.T, g *Game, ctx *fakeContext, drawer string) string {
	t.Helper()
	res := act(g, ctx, drawer, ActionPickWord, map[string]any{"index": 0})
	require.True(t, res.Success, res.Error)
	require.Equal(t, PhaseDrawing, g.st.Phase)
	return g.st.Word
}

func otherPlayer(ctx *fakeContext, drawer string) string {
	for _, p := range ctx.players {
		if p.ID != drawer {
			return p.ID
		}
	}
	return ""
}

func TestCheckStartRequiresMinPlayers(t *testing.T) {
	ctx := newFakeContext("solo")
	g := NewDefinition().New().(*Game)
	assert.ErrorIs(t, g.CheckStart(ctx), ErrNotEnoughPlayers)

	ctx = newFakeContext("a", "b")
	assert.NoError(t, g.CheckStart(ctx))
}

func TestWordOptionsGoToDrawerOnly(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")

	require.Len(t, g.st.WordOptions, 3)
	var optionEvents int
	for _, e := range ctx.events {
		if e.name == "sketch:word_options" {
			optionEvents++
			assert.Equal(t, []string{drawer}, e.to)
		}
	}
	assert.Equal(t, 1, optionEvents)
	assert.True(t, ctx.hasEvent("sketch:picking_word"))
}

func TestOnlyDrawerPicksWord(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b")
	guesser := otherPlayer(ctx, drawer)

	res := act(g, ctx, guesser, ActionPickWord, map[string]any{"index": 0})
	assert.False(t, res.Success)
	assert.Equal(t, "not_drawer", res.Code)

	res = act(g, ctx, drawer, ActionPickWord, map[string]any{"index": 99})
	assert.False(t, res.Success)
	assert.Equal(t, "invalid_selection", res.Code)

	res = act(g, ctx, drawer, ActionPickWord, map[string]any{"index": 1})
	assert.True(t, res.Success)
	assert.Equal(t, PhaseDrawing, g.st.Phase)
	assert.NotEmpty(t, g.st.Word)
	assert.Nil(t, g.st.WordOptions)
}

func TestGuessRejectedWhilePicking(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b")
	guesser := otherPlayer(ctx, drawer)

	res := act(g, ctx, guesser, ActionGuess, map[string]any{"text": "anything"})
	assert.False(t, res.Success)
	assert.Equal(t, "action_not_allowed", res.Code)
}

func TestCorrectGuessScoresBothSides(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	word := pickFirstWord(t, g, ctx, drawer)
	guesser := otherPlayer(ctx, drawer)

	res := act(g, ctx, guesser, ActionGuess, map[string]any{"text": word})
	require.True(t, res.Success)

	// An immediate guess is worth (almost) the full decay maximum.
	assert.GreaterOrEqual(t, ctx.Score(guesser), 495)
	assert.LessOrEqual(t, ctx.Score(guesser), 500)
	assert.Equal(t, 50, ctx.Score(drawer))
	assert.True(t, g.st.Guessed[guesser])
	assert.True(t, ctx.hasEvent("sketch:player_guessed"))
}

func TestDrawerCannotGuess(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b")
	word := pickFirstWord(t, g, ctx, drawer)

	res := act(g, ctx, drawer, ActionGuess, map[string]any{"text": word})
	assert.False(t, res.Success)
	assert.Equal(t, "drawer_cannot_guess", res.Code)
	assert.Zero(t, ctx.Score(drawer))
}

func TestAllGuessedEndsTurnWithBonus(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	word := pickFirstWord(t, g, ctx, drawer)

	for _, p := range ctx.players {
		if p.ID == drawer {
			continue
		}
		res := act(g, ctx, p.ID, ActionGuess, map[string]any{"text": word})
		require.True(t, res.Success)
	}

	assert.Equal(t, PhaseTurnResults, g.st.Phase)
	require.NotNil(t, g.st.LastTurn)
	assert.Equal(t, "all_guessed", g.st.LastTurn.Reason)
	assert.Equal(t, word, g.st.LastTurn.Word)
	// Two per-guess bonuses plus the all-guessed bonus.
	assert.Equal(t, 2*50+100, ctx.Score(drawer))
}

func TestRepeatGuessOfWordStaysHidden(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	word := pickFirstWord(t, g, ctx, drawer)
	guesser := otherPlayer(ctx, drawer)

	require.True(t, act(g, ctx, guesser, ActionGuess, map[string]any{"text": word}).Success)
	chatCount := len(g.st.Messages)

	// Re-sending the word after solving must not echo it into chat.
	require.True(t, act(g, ctx, guesser, ActionGuess, map[string]any{"text": word}).Success)
	assert.Len(t, g.st.Messages, chatCount)

	// Ordinary chatter still goes through.
	require.True(t, act(g, ctx, guesser, ActionGuess, map[string]any{"text": "nice drawing"}).Success)
	assert.Len(t, g.st.Messages, chatCount+1)
}

func TestCloseGuessIsPrivate(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	word := pickFirstWord(t, g, ctx, drawer)
	guesser := otherPlayer(ctx, drawer)

	near := word[:len(word)-1]
	before := len(g.st.Messages)
	res := act(g, ctx, guesser, ActionGuess, map[string]any{"text": near})
	require.True(t, res.Success)

	// Not scored, not chatted; only the guesser sees the nudge.
	assert.Zero(t, ctx.Score(guesser))
	assert.Len(t, g.st.Messages, before)
	var closeEvents []sentEvent
	for _, e := range ctx.eventsTo(guesser) {
		if e.name == "sketch:close_guess" {
			closeEvents = append(closeEvents, e)
		}
	}
	require.Len(t, closeEvents, 1)
	assert.Equal(t, []string{guesser}, closeEvents[0].to)
}

func TestStrokesAreDrawerOnlyAndRelayed(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	pickFirstWord(t, g, ctx, drawer)
	guesser := otherPlayer(ctx, drawer)

	res := act(g, ctx, guesser, ActionStroke, map[string]any{"points": []any{}})
	assert.Equal(t, "not_drawer", res.Code)

	require.True(t, act(g, ctx, drawer, ActionStroke, map[string]any{"points": []any{}}).Success)
	require.True(t, act(g, ctx, drawer, ActionStroke, map[string]any{"points": []any{}}).Success)
	assert.Len(t, g.st.Strokes, 2)

	// Relays skip the drawer.
	for _, e := range ctx.events {
		if e.name == "sketch:stroke" {
			assert.NotContains(t, e.to, drawer)
		}
	}

	require.True(t, act(g, ctx, drawer, ActionUndo, nil).Success)
	assert.Len(t, g.st.Strokes, 1)
	require.True(t, act(g, ctx, drawer, ActionClear, nil).Success)
	assert.Empty(t, g.st.Strokes)
}

func TestTimeoutRevealsWord(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b")
	word := pickFirstWord(t, g, ctx, drawer)

	done := g.OnTurnTimeout(ctx, drawer)
	assert.True(t, done)
	assert.Equal(t, PhaseTurnResults, g.st.Phase)
	require.NotNil(t, g.st.LastTurn)
	assert.Equal(t, "timeout", g.st.LastTurn.Reason)
	assert.Equal(t, word, g.st.LastTurn.Word)
}

func TestPickTimeoutAutoPicks(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b")

	done := g.OnTurnTimeout(ctx, drawer)
	assert.False(t, done, "auto-pick consumes the timeout")
	assert.Equal(t, PhaseDrawing, g.st.Phase)
	assert.NotEmpty(t, g.st.Word)
}

func TestNegativeWordOptionCountStillOffersOne(t *testing.T) {
	ctx := newFakeContext("a", "b")
	ctx.settings["wordOptionCount"] = -1
	g := NewDefinition().New().(*Game)
	ctx.SetState(g.InitialState(ctx))
	g.OnStart(ctx)

	require.NotPanics(t, func() { ctx.fireNextAfter() })
	require.Equal(t, PhasePickingWord, g.st.Phase)
	assert.Len(t, g.st.WordOptions, 1)
}

func TestZeroWordOptionCountSurvivesPickTimeout(t *testing.T) {
	ctx := newFakeContext("a", "b")
	ctx.settings["wordOptionCount"] = 0
	g := NewDefinition().New().(*Game)
	ctx.SetState(g.InitialState(ctx))
	g.OnStart(ctx)
	require.True(t, ctx.fireNextAfter())
	require.NotEmpty(t, g.st.WordOptions)

	require.NotPanics(t, func() { g.OnTurnTimeout(ctx, g.st.DrawerID) })
	assert.Equal(t, PhaseDrawing, g.st.Phase)
	assert.NotEmpty(t, g.st.Word)
}

func TestStateForMasksWord(t *testing.T) {
	g, ctx, drawer := startTurn(t, "a", "b", "c")
	word := pickFirstWord(t, g, ctx, drawer)
	guesser := otherPlayer(ctx, drawer)

	drawerView := g.StateFor(ctx, drawer).(view)
	assert.Equal(t, word, drawerView.Word)

	guesserView := g.StateFor(ctx, guesser).(view)
	assert.Empty(t, guesserView.Word)
	assert.NotEmpty(t, guesserView.Hint)

	require.True(t, act(g, ctx, guesser, ActionGuess, map[string]any{"text": word}).Success)
	solvedView := g.StateFor(ctx, guesser).(view)
	assert.Equal(t, word, solvedView.Word)
}

func TestFinalResultRanksAndPicksWinner(t *testing.T) {
	g, ctx, _ := startTurn(t, "a", "b", "c")
	ctx.SetScore("a", 100)
	ctx.SetScore("b", 700)
	ctx.SetScore("c", 300)

	result := g.FinalResult(ctx)
	assert.Equal(t, GameID, result.GameID)
	assert.Equal(t, "b", result.WinnerID)
	require.Len(t, result.FinalScores, 3)
	assert.Equal(t, 1, result.FinalScores[0].Rank)
	assert.Equal(t, "b", result.FinalScores[0].PlayerID)
	assert.Equal(t, "c", result.FinalScores[1].PlayerID)
	assert.Equal(t, "a", result.FinalScores[2].PlayerID)
}

func TestGuessPointsDecay(t *testing.T) {
	assert.Equal(t, 500, guessPoints(0, 80*time.Second, 500, 100))
	assert.Equal(t, 300, guessPoints(40*time.Second, 80*time.Second, 500, 100))
	assert.Equal(t, 100, guessPoints(80*time.Second, 80*time.Second, 500, 100))
	// Late callbacks can land past the nominal total.
	assert.Equal(t, 100, guessPoints(2*time.Hour, 80*time.Second, 500, 100))
	assert.Equal(t, 100, guessPoints(time.Second, 0, 500, 100))
}

func TestIsCloseGuess(t *testing.T) {
	assert.True(t, isCloseGuess("cat", "cats", 2))
	assert.True(t, isCloseGuess("cats", "cat", 2))
	assert.False(t, isCloseGuess("dog", "cat", 2))
	// Too short to count, even though it is a substring.
	assert.False(t, isCloseGuess("c", "cat", 2))
	assert.False(t, isCloseGuess("cat", "", 2))
}
