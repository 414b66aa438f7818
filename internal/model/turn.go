package model

import "time"

// TurnState is the generic round/turn bookkeeping owned by the turn-based
// game abstraction. CurrentTurnIndex is a valid index into TurnOrder or -1.
type TurnState struct {
	CurrentRound     int       `json:"currentRound"`
	TotalRounds      int       `json:"totalRounds"`
	TurnOrder        []string  `json:"turnOrder"`
	CurrentTurnIndex int       `json:"currentTurnIndex"`
	TurnStartTime    time.Time `json:"turnStartTime"`
	TimeRemaining    int       `json:"timeRemainingSeconds"`
}

// CurrentPlayerID returns the player whose turn it is, or "" when no turn
// is active.
func (t *TurnState) CurrentPlayerID() string {
	if t.CurrentTurnIndex < 0 || t.CurrentTurnIndex >= len(t.TurnOrder) {
		return ""
	}
	return t.TurnOrder[t.CurrentTurnIndex]
}
