package sketch

import (
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"
)

// Phase is the game's fine-grained sub-state within the room's active
// status.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseStarting    Phase = "starting"
	PhaseRoundStart  Phase = "round_start"
	PhasePickingWord Phase = "picking_word"
	PhaseDrawing     Phase = "drawing"
	PhaseTurnResults Phase = "turn_results"
	PhaseGameOver    Phase = "game_over"
)

// legalActions enumerates which action types each phase accepts. Phases
// absent from the table accept nothing.
var legalActions = map[Phase]map[string]bool{
	PhasePickingWord: {
		ActionPickWord: true,
	},
	PhaseDrawing: {
		ActionGuess:  true,
		ActionStroke: true,
		ActionUndo:   true,
		ActionClear:  true,
	},
}

// Stroke is an opaque drawing segment relayed between clients. The server
// stores and forwards it without interpreting the geometry.
type Stroke map[string]any

// ChatMessage is one entry of the in-turn chat log.
type ChatMessage struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	System   bool      `json:"system"`
	SentAt   time.Time `json:"sentAt"`
}

// TurnResult summarizes a finished turn for the results display.
type TurnResult struct {
	Word     string         `json:"word"`
	DrawerID string         `json:"drawerId"`
	Reason   string         `json:"reason"` // timeout | all_guessed | player_left
	Points   map[string]int `json:"points"`
}

// state is the full per-room game state. It lives in the game context and
// dies with the room.
type state struct {
	Phase         Phase
	DrawerID      string
	Word          string
	WordOptions   []string
	Hint          string
	HintsRevealed int
	Strokes       []Stroke
	Guessed       map[string]bool
	Messages      []ChatMessage
	LastTurn      *TurnResult

	// per-turn internals
	letterOrder []int
	turnPoints  map[string]int
	hintTimers  []game.Handle

	// lifetime stats
	wordsPlayed    int
	correctGuesses int
}

func newState() *state {
	return &state{
		Phase:      PhaseStarting,
		Guessed:    make(map[string]bool),
		turnPoints: make(map[string]int),
	}
}

// view is the filtered state a single player receives. The word is masked
// for everyone who has not drawn or guessed it; options are drawer-only.
type view struct {
	Phase         Phase             `json:"phase"`
	DrawerID      string            `json:"drawerId"`
	Word          string            `json:"word,omitempty"`
	WordOptions   []string          `json:"wordOptions,omitempty"`
	Hint          string            `json:"hint"`
	HintsRevealed int               `json:"hintsRevealed"`
	Strokes       []Stroke          `json:"strokes"`
	Guessed       []string          `json:"guessedPlayers"`
	Messages      []ChatMessage     `json:"messages"`
	LastTurn      *TurnResult       `json:"lastTurnResult,omitempty"`
	Turn          model.TurnState   `json:"turn"`
	Scoreboard    []game.ScoreEntry `json:"scoreboard"`
}

// StateFor returns the state as seen by playerID.
func (g *Game) StateFor(ctx game.Context, playerID string) any {
	st := g.st
	v := view{
		Phase:         st.Phase,
		DrawerID:      st.DrawerID,
		Hint:          st.Hint,
		HintsRevealed: st.HintsRevealed,
		Strokes:       st.Strokes,
		Messages:      st.Messages,
		LastTurn:      st.LastTurn,
		Turn:          g.tb.Turn,
		Scoreboard:    ctx.Scoreboard(),
	}
	for id := range st.Guessed {
		v.Guessed = append(v.Guessed, id)
	}
	if playerID == st.DrawerID {
		v.Word = st.Word
		v.WordOptions = st.WordOptions
	} else if st.Guessed[playerID] {
		v.Word = st.Word
	}
	return v
}
