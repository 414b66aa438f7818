package sketch

import (
	"strings"
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"

	"github.com/google/uuid"
)

const (
	ActionPickWord = "pick_word"
	ActionGuess    = "guess"
	ActionStroke   = "stroke"
	ActionUndo     = "undo"
	ActionClear    = "clear"
)

// HandleAction validates an action against the phase legality table and
// dispatches it. Player mistakes come back as failed results; the room is
// never torn down by a bad action.
func (g *Game) HandleAction(ctx game.Context, actor *model.Player, action game.Action) game.Result {
	if !legalActions[g.st.Phase][action.Type] {
		return game.Fail("action_not_allowed", "action "+action.Type+" is not allowed in phase "+string(g.st.Phase))
	}

	switch action.Type {
	case ActionPickWord:
		return g.handlePickWord(ctx, actor, action)
	case ActionGuess:
		return g.handleGuess(ctx, actor, action)
	case ActionStroke:
		return g.handleStroke(ctx, actor, action)
	case ActionUndo:
		return g.handleUndo(ctx, actor)
	case ActionClear:
		return g.handleClear(ctx, actor)
	default:
		return game.Fail("unknown_action", "unknown action type "+action.Type)
	}
}

func (g *Game) handlePickWord(ctx game.Context, actor *model.Player, action game.Action) game.Result {
	if actor.ID != g.st.DrawerID {
		return game.Fail("not_drawer", "only the drawer picks the word")
	}
	idx, ok := intField(action.Payload, "index")
	if !ok || idx < 0 || idx >= len(g.st.WordOptions) {
		return game.Fail("invalid_selection", "word index out of range")
	}
	g.applyWordPick(ctx, idx)
	return game.OK()
}

func (g *Game) handleGuess(ctx game.Context, actor *model.Player, action game.Action) game.Result {
	st := g.st
	if actor.ID == st.DrawerID {
		return game.Fail("drawer_cannot_guess", "the drawer cannot guess")
	}
	text, _ := action.Payload["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return game.Fail("empty_guess", "guess text is required")
	}

	guess := strings.ToLower(text)
	word := strings.ToLower(st.Word)

	if st.Guessed[actor.ID] {
		// Solved players keep chatting, but the word itself stays hidden
		// from the remaining guessers.
		if guess != word {
			g.chat(ctx, actor, text)
		}
		return game.OK()
	}

	if guess == word {
		g.scoreCorrectGuess(ctx, actor)
		return game.OK()
	}

	if isCloseGuess(guess, word, ctx.Settings().Int("closeGuessMinLength", 2)) {
		// Shown privately so the near-miss does not leak to the room.
		ctx.SendToPlayer(actor.ID, g.event("close_guess"), map[string]any{"guess": text})
		return game.OK()
	}

	g.chat(ctx, actor, text)
	return game.OK()
}

// scoreCorrectGuess awards the guesser linear-decay points and the drawer
// a per-guess bonus; when every eligible guesser has solved it the drawer
// collects the all-guessed bonus and the turn ends early.
func (g *Game) scoreCorrectGuess(ctx game.Context, actor *model.Player) {
	st := g.st
	settings := ctx.Settings()

	points := guessPoints(
		g.tb.Elapsed(), g.tb.TurnDuration(),
		settings.Int("maxGuessPoints", 500),
		settings.Int("minGuessPoints", 100),
	)
	st.Guessed[actor.ID] = true
	st.correctGuesses++
	st.turnPoints[actor.ID] += points
	ctx.AddScore(actor.ID, points)

	drawerBonus := settings.Int("drawerGuessBonus", 50)
	st.turnPoints[st.DrawerID] += drawerBonus
	ctx.AddScore(st.DrawerID, drawerBonus)

	g.systemChat(ctx, actor.Name+" guessed the word!")
	ctx.SendToPlayer(actor.ID, g.event("guess_correct"), map[string]any{
		"word":   st.Word,
		"points": points,
	})
	ctx.Broadcast(g.event("player_guessed"), map[string]any{
		"playerId":   actor.ID,
		"scoreboard": ctx.Scoreboard(),
	})

	if g.allGuessed(ctx) {
		allBonus := settings.Int("drawerAllGuessedBonus", 100)
		st.turnPoints[st.DrawerID] += allBonus
		ctx.AddScore(st.DrawerID, allBonus)
		g.tb.EndTurn(ctx)
	}
}

// allGuessed reports whether every connected non-drawer player has solved
// the word.
func (g *Game) allGuessed(ctx game.Context) bool {
	for _, p := range ctx.Players() {
		if p.ID == g.st.DrawerID || !p.IsConnected {
			continue
		}
		if !g.st.Guessed[p.ID] {
			return false
		}
	}
	return true
}

func (g *Game) handleStroke(ctx game.Context, actor *model.Player, action game.Action) game.Result {
	if actor.ID != g.st.DrawerID {
		return game.Fail("not_drawer", "only the drawer draws")
	}
	stroke := Stroke(action.Payload)
	g.st.Strokes = append(g.st.Strokes, stroke)
	// The drawer already has the stroke locally.
	ctx.BroadcastExcept(g.event("stroke"), stroke, actor.ID)
	return game.OK()
}

func (g *Game) handleUndo(ctx game.Context, actor *model.Player) game.Result {
	if actor.ID != g.st.DrawerID {
		return game.Fail("not_drawer", "only the drawer draws")
	}
	if n := len(g.st.Strokes); n > 0 {
		g.st.Strokes = g.st.Strokes[:n-1]
	}
	ctx.BroadcastExcept(g.event("undo"), nil, actor.ID)
	return game.OK()
}

func (g *Game) handleClear(ctx game.Context, actor *model.Player) game.Result {
	if actor.ID != g.st.DrawerID {
		return game.Fail("not_drawer", "only the drawer draws")
	}
	g.st.Strokes = nil
	ctx.BroadcastExcept(g.event("clear"), nil, actor.ID)
	return game.OK()
}

func (g *Game) chat(ctx game.Context, actor *model.Player, text string) {
	msg := ChatMessage{
		ID:       uuid.NewString(),
		PlayerID: actor.ID,
		Name:     actor.Name,
		Text:     text,
		SentAt:   time.Now(),
	}
	g.st.Messages = append(g.st.Messages, msg)
	ctx.Broadcast(g.event("chat"), msg)
}

func (g *Game) systemChat(ctx game.Context, text string) {
	msg := ChatMessage{
		ID:     uuid.NewString(),
		Text:   text,
		System: true,
		SentAt: time.Now(),
	}
	g.st.Messages = append(g.st.Messages, msg)
	ctx.Broadcast(g.event("chat"), msg)
}

// guessPoints decays linearly from max to min over the turn. A guess at
// half time with 500/100 is worth 300.
func guessPoints(elapsed, total time.Duration, max, min int) int {
	if total <= 0 {
		return min
	}
	frac := float64(elapsed) / float64(total)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return min + int(float64(max-min)*(1-frac))
}

// isCloseGuess implements the substring heuristic: either string contains
// the other and the guess is at least minLen long.
func isCloseGuess(guess, word string, minLen int) bool {
	if len(guess) < minLen || word == "" {
		return false
	}
	return strings.Contains(word, guess) || strings.Contains(guess, word)
}

func intField(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
