package service

import (
	"sort"
	"sync"
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"
)

// room is the runtime record behind one model.Room: the game instance and
// context bound to it, its timer arena and pending disconnect grace
// timers. Its mutex is the room's serialization point — every handler and
// timer callback touching the room runs under it, so no two mutations of
// the same room ever race.
type room struct {
	mu sync.Mutex

	model *model.Room
	def   game.Definition
	inst  game.Instance
	ctx   *roomContext

	timers *timerSet
	grace  map[string]*timerHandle // playerID -> disconnect grace timer

	state     any // game state, owned by the active instance
	active    bool
	startedAt time.Time
	destroyed bool
}

// playerIDs returns every member's ID, for broadcast recipient lists.
func (r *room) playerIDs(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	ids := make([]string, 0, len(r.model.Players))
	for id := range r.model.Players {
		if !skip[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *room) cancelGraceTimers() {
	for _, h := range r.grace {
		h.Cancel()
	}
	r.grace = make(map[string]*timerHandle)
}

// roomContext implements game.Context. Its methods assume the room lock
// is held: they are only reachable from game hooks and timer callbacks,
// both of which the manager runs under the room's serialization.
type roomContext struct {
	m *RoomManager
	r *room
}

func (c *roomContext) RoomCode() string { return c.r.model.Code }
func (c *roomContext) GameID() string   { return c.r.model.GameID }
func (c *roomContext) HostID() string   { return c.r.model.HostID }

func (c *roomContext) Players() []*model.Player {
	return c.r.model.PlayersByJoinTime()
}

func (c *roomContext) Player(id string) (*model.Player, bool) {
	p, ok := c.r.model.Players[id]
	return p, ok
}

func (c *roomContext) ConnectedCount() int {
	return c.r.model.ConnectedCount()
}

func (c *roomContext) Settings() model.GameSettings {
	return c.r.model.Settings
}

func (c *roomContext) Broadcast(event string, data any) {
	c.m.broadcaster.ToUsers(c.r.playerIDs(), event, data)
}

func (c *roomContext) BroadcastExcept(event string, data any, excludeIDs ...string) {
	c.m.broadcaster.ToUsers(c.r.playerIDs(excludeIDs...), event, data)
}

func (c *roomContext) SendToPlayer(playerID, event string, data any) {
	if _, ok := c.r.model.Players[playerID]; !ok {
		return
	}
	c.m.broadcaster.ToUser(playerID, event, data)
}

func (c *roomContext) SendToPlayers(playerIDs []string, event string, data any) {
	for _, id := range playerIDs {
		c.SendToPlayer(id, event, data)
	}
}

func (c *roomContext) State() any         { return c.r.state }
func (c *roomContext) SetState(state any) { c.r.state = state }

func (c *roomContext) AddScore(playerID string, delta int) int {
	p, ok := c.r.model.Players[playerID]
	if !ok {
		return 0
	}
	p.Score += delta
	return p.Score
}

func (c *roomContext) SetScore(playerID string, score int) {
	if p, ok := c.r.model.Players[playerID]; ok {
		p.Score = score
	}
}

func (c *roomContext) Score(playerID string) int {
	if p, ok := c.r.model.Players[playerID]; ok {
		return p.Score
	}
	return 0
}

// Scoreboard sorts descending by score; the sort is stable over join
// order, so ties keep the order players entered the room.
func (c *roomContext) Scoreboard() []game.ScoreEntry {
	players := c.r.model.PlayersByJoinTime()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	board := make([]game.ScoreEntry, len(players))
	for i, p := range players {
		board[i] = game.ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score}
	}
	return board
}

// After schedules a game callback. The callback re-enters through the
// manager, acquiring the room lock and checking that the room and game
// are still alive — a scheduled callback may legitimately outlive both.
func (c *roomContext) After(d time.Duration, fn func()) game.Handle {
	return c.r.timers.After(d, func() {
		c.m.runInRoom(c.r.model.Code, func(r *room) {
			if r.active {
				fn()
			}
		})
	})
}

func (c *roomContext) Every(d time.Duration, fn func()) game.Handle {
	return c.r.timers.Every(d, func() {
		c.m.runInRoom(c.r.model.Code, func(r *room) {
			if r.active {
				fn()
			}
		})
	})
}

// EndGame flips the active flag, sweeps every outstanding game timer and
// hands finalization to the manager. Finalization runs as its own event
// after the current handler returns, preserving arrival-order processing.
func (c *roomContext) EndGame(reason string) {
	if !c.r.active {
		return
	}
	c.r.active = false
	c.r.timers.CancelAll()
	go c.m.finishGame(c.r.model.Code, reason)
}

func (c *roomContext) Active() bool { return c.r.active }
