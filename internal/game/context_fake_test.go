package game

import (
	"sort"
	"time"

	"teamplay/internal/model"
)

// fakeTimer is a manually fired timer so tests control the clock.
type fakeTimer struct {
	d         time.Duration
	fn        func()
	repeating bool
	cancelled bool
	fired     bool
}

func (t *fakeTimer) Cancel() { t.cancelled = true }

type fakeEvent struct {
	name string
	data any
	to   []string // nil means broadcast
}

// fakeContext implements Context with recorded events and manual timers.
type fakeContext struct {
	code     string
	gameID   string
	hostID   string
	players  []*model.Player
	settings model.GameSettings
	scores   map[string]int
	state    any
	active   bool

	events []fakeEvent
	timers []*fakeTimer

	endReason string
}

func newFakeContext(gameID string, playerIDs ...string) *fakeContext {
	c := &fakeContext{
		code:     "TEST42",
		gameID:   gameID,
		settings: model.GameSettings{},
		scores:   make(map[string]int),
		active:   true,
	}
	base := time.Now()
	for i, id := range playerIDs {
		c.players = append(c.players, &model.Player{
			ID:          id,
			Name:        id,
			IsConnected: true,
			JoinedAt:    base.Add(time.Duration(i) * time.Second),
		})
	}
	if len(playerIDs) > 0 {
		c.hostID = playerIDs[0]
	}
	return c
}

func (c *fakeContext) RoomCode() string { return c.code }
func (c *fakeContext) GameID() string   { return c.gameID }
func (c *fakeContext) HostID() string   { return c.hostID }

func (c *fakeContext) Players() []*model.Player { return c.players }

func (c *fakeContext) Player(id string) (*model.Player, bool) {
	for _, p := range c.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (c *fakeContext) ConnectedCount() int {
	n := 0
	for _, p := range c.players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

func (c *fakeContext) Settings() model.GameSettings { return c.settings }

func (c *fakeContext) Broadcast(event string, data any) {
	c.events = append(c.events, fakeEvent{name: event, data: data})
}

func (c *fakeContext) BroadcastExcept(event string, data any, excludeIDs ...string) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var to []string
	for _, p := range c.players {
		if !excluded[p.ID] {
			to = append(to, p.ID)
		}
	}
	c.events = append(c.events, fakeEvent{name: event, data: data, to: to})
}

func (c *fakeContext) SendToPlayer(playerID, event string, data any) {
	c.events = append(c.events, fakeEvent{name: event, data: data, to: []string{playerID}})
}

func (c *fakeContext) SendToPlayers(playerIDs []string, event string, data any) {
	c.events = append(c.events, fakeEvent{name: event, data: data, to: playerIDs})
}

func (c *fakeContext) State() any         { return c.state }
func (c *fakeContext) SetState(state any) { c.state = state }

func (c *fakeContext) AddScore(playerID string, delta int) int {
	c.scores[playerID] += delta
	return c.scores[playerID]
}

func (c *fakeContext) SetScore(playerID string, score int) { c.scores[playerID] = score }
func (c *fakeContext) Score(playerID string) int           { return c.scores[playerID] }

func (c *fakeContext) Scoreboard() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(c.players))
	for _, p := range c.players {
		entries = append(entries, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: c.scores[p.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

func (c *fakeContext) After(d time.Duration, fn func()) Handle {
	t := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeContext) Every(d time.Duration, fn func()) Handle {
	t := &fakeTimer{d: d, fn: fn, repeating: true}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeContext) EndGame(reason string) {
	c.active = false
	c.endReason = reason
}

func (c *fakeContext) Active() bool { return c.active }

// fireNextAfter runs the oldest pending one-shot timer.
func (c *fakeContext) fireNextAfter() bool {
	for _, t := range c.timers {
		if !t.repeating && !t.cancelled && !t.fired {
			t.fired = true
			t.fn()
			return true
		}
	}
	return false
}

// tick runs the live repeating timer n times, stopping if it gets
// cancelled mid-run (a timeout cancels its own ticker).
func (c *fakeContext) tick(n int) {
	for i := 0; i < n; i++ {
		var live *fakeTimer
		for _, t := range c.timers {
			if t.repeating && !t.cancelled {
				live = t
			}
		}
		if live == nil {
			return
		}
		live.fn()
	}
}

func (c *fakeContext) eventNames() []string {
	names := make([]string, len(c.events))
	for i, e := range c.events {
		names[i] = e.name
	}
	return names
}

func (c *fakeContext) lastEvent(name string) (fakeEvent, bool) {
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].name == name {
			return c.events[i], true
		}
	}
	return fakeEvent{}, false
}

func (c *fakeContext) disconnect(id string) {
	if p, ok := c.Player(id); ok {
		p.IsConnected = false
	}
}
