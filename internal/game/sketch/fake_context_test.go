package sketch

import (
	"sort"
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"
)

type fakeTimer struct {
	fn        func()
	repeating bool
	cancelled bool
	fired     bool
}

func (t *fakeTimer) Cancel() { t.cancelled = true }

type sentEvent struct {
	name string
	data any
	to   []string // nil means broadcast to everyone
}

type fakeContext struct {
	players  []*model.Player
	settings model.GameSettings
	scores   map[string]int
	state    any
	active   bool

	events    []sentEvent
	timers    []*fakeTimer
	endReason string
}

func newFakeContext(playerIDs ...string) *fakeContext {
	c := &fakeContext{
		settings: def{}.DefaultSettings(),
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
	return c
}

func (c *fakeContext) RoomCode() string { return "SKETCH" }
func (c *fakeContext) GameID() string   { return GameID }
func (c *fakeContext) HostID() string   { return c.players[0].ID }

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
	c.events = append(c.events, sentEvent{name: event, data: data})
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
	c.events = append(c.events, sentEvent{name: event, data: data, to: to})
}

func (c *fakeContext) SendToPlayer(playerID, event string, data any) {
	c.events = append(c.events, sentEvent{name: event, data: data, to: []string{playerID}})
}

func (c *fakeContext) SendToPlayers(playerIDs []string, event string, data any) {
	c.events = append(c.events, sentEvent{name: event, data: data, to: playerIDs})
}

func (c *fakeContext) State() any         { return c.state }
func (c *fakeContext) SetState(state any) { c.state = state }

func (c *fakeContext) AddScore(playerID string, delta int) int {
	c.scores[playerID] += delta
	return c.scores[playerID]
}

func (c *fakeContext) SetScore(playerID string, score int) { c.scores[playerID] = score }
func (c *fakeContext) Score(playerID string) int           { return c.scores[playerID] }

func (c *fakeContext) Scoreboard() []game.ScoreEntry {
	entries := make([]game.ScoreEntry, 0, len(c.players))
	for _, p := range c.players {
		entries = append(entries, game.ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: c.scores[p.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

func (c *fakeContext) After(d time.Duration, fn func()) game.Handle {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeContext) Every(d time.Duration, fn func()) game.Handle {
	t := &fakeTimer{fn: fn, repeating: true}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeContext) EndGame(reason string) {
	c.active = false
	c.endReason = reason
}

func (c *fakeContext) Active() bool { return c.active }

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

func (c *fakeContext) eventsTo(playerID string) []sentEvent {
	var out []sentEvent
	for _, e := range c.events {
		if e.to == nil {
			out = append(out, e)
			continue
		}
		for _, id := range e.to {
			if id == playerID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (c *fakeContext) hasEvent(name string) bool {
	for _, e := range c.events {
		if e.name == name {
			return true
		}
	}
	return false
}
