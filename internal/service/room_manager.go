package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teamplay/internal/game"
	"teamplay/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultGracePeriod is how long a disconnected player's seat is held
	// open for reconnection before removal.
	DefaultGracePeriod = 30 * time.Second
	// DefaultStartCountdown is the lobby-to-active countdown.
	DefaultStartCountdown = 3 * time.Second

	recordTimeout = 10 * time.Second
)

// RoomManager is the top-level orchestrator: room lifecycle, player
// admission and removal, settings, game start/stop and action dispatch.
// The room map and player index are guarded by a coarse lock (creation
// and destruction are rare); each room is serialized by its own mutex.
type RoomManager struct {
	registry    *game.Registry
	broadcaster Broadcaster
	recorder    ResultRecorder

	gracePeriod    time.Duration
	startCountdown time.Duration

	mu          sync.RWMutex
	rooms       map[string]*room
	playerRooms map[string]string // userID -> room code
}

// NewRoomManager builds the orchestrator with default timings.
func NewRoomManager(registry *game.Registry, b Broadcaster, rec ResultRecorder) *RoomManager {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &RoomManager{
		registry:       registry,
		broadcaster:    b,
		recorder:       rec,
		gracePeriod:    DefaultGracePeriod,
		startCountdown: DefaultStartCountdown,
		rooms:          make(map[string]*room),
		playerRooms:    make(map[string]string),
	}
}

// SetTimings overrides the reconnect grace and start countdown. Call
// before serving traffic.
func (m *RoomManager) SetTimings(grace, countdown time.Duration) {
	if grace > 0 {
		m.gracePeriod = grace
	}
	if countdown > 0 {
		m.startCountdown = countdown
	}
}

// CreateRoom opens a new room for the given game with the caller as host.
func (m *RoomManager) CreateRoom(id model.Identity, connID, gameID string, overrides model.GameSettings) error {
	def, err := m.registry.Get(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if _, inRoom := m.playerRooms[id.UserID]; inRoom {
		m.mu.Unlock()
		return ErrAlreadyInRoom
	}

	code, err := m.uniqueCodeLocked()
	if err != nil {
		m.mu.Unlock()
		return err
	}

	now := time.Now()
	host := &model.Player{
		ID:          id.UserID,
		Name:        id.Name,
		ConnID:      connID,
		IsConnected: true,
		JoinedAt:    now,
	}
	r := &room{
		model: &model.Room{
			Code:      code,
			GameID:    gameID,
			TeamID:    id.TeamID,
			HostID:    id.UserID,
			Players:   map[string]*model.Player{id.UserID: host},
			Settings:  def.DefaultSettings().Merge(overrides),
			Status:    model.RoomLobby,
			CreatedAt: now,
			UpdatedAt: now,
		},
		def:    def,
		inst:   def.New(),
		timers: newTimerSet(),
		grace:  make(map[string]*timerHandle),
	}
	r.ctx = &roomContext{m: m, r: r}
	m.rooms[code] = r
	m.playerRooms[id.UserID] = code
	m.mu.Unlock()

	log.Info().Str("room", code).Str("game", gameID).Str("host", id.UserID).Msg("room created")

	r.mu.Lock()
	view := m.roomView(r, id.UserID)
	r.mu.Unlock()
	m.broadcaster.ToUser(id.UserID, EventRoomCreated, view)
	return nil
}

// uniqueCodeLocked generates a room code, retrying on collision. Caller
// holds m.mu.
func (m *RoomManager) uniqueCodeLocked() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := newRoomCode()
		if err != nil {
			return "", err
		}
		if _, taken := m.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room code")
}

// JoinRoom admits a user to a room, or re-attaches them after a
// disconnect. Rejoining cancels the pending grace timer and, mid-game,
// replays the player's filtered state view.
func (m *RoomManager) JoinRoom(id model.Identity, connID, code string) error {
	m.mu.Lock()
	r, ok := m.rooms[code]
	if !ok {
		m.mu.Unlock()
		return ErrRoomNotFound
	}
	if current, inRoom := m.playerRooms[id.UserID]; inRoom && current != code {
		m.mu.Unlock()
		return ErrAlreadyInRoom
	}
	m.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRoomNotFound
	}

	if p, rejoining := r.model.Players[id.UserID]; rejoining {
		m.rejoinLocked(r, p, connID)
		return nil
	}

	if r.model.Status != model.RoomLobby {
		return ErrGameInProgress
	}
	if len(r.model.Players) >= r.def.Info().MaxPlayers {
		return ErrRoomFull
	}

	p := &model.Player{
		ID:          id.UserID,
		Name:        id.Name,
		ConnID:      connID,
		IsConnected: true,
		JoinedAt:    time.Now(),
	}
	r.model.Players[id.UserID] = p
	r.model.UpdatedAt = time.Now()

	m.mu.Lock()
	m.playerRooms[id.UserID] = code
	m.mu.Unlock()

	r.inst.OnPlayerJoin(r.ctx, p)

	log.Info().Str("room", code).Str("player", id.UserID).Msg("player joined")
	m.broadcaster.ToUsers(r.playerIDs(id.UserID), EventPlayerJoined, p)
	m.broadcaster.ToUser(id.UserID, EventRoomJoined, m.roomView(r, id.UserID))
	return nil
}

// rejoinLocked re-attaches a returning player. Caller holds r.mu.
func (m *RoomManager) rejoinLocked(r *room, p *model.Player, connID string) {
	if h, pending := r.grace[p.ID]; pending {
		h.Cancel()
		delete(r.grace, p.ID)
	}
	p.ConnID = connID
	p.IsConnected = true
	r.model.UpdatedAt = time.Now()

	m.mu.Lock()
	m.playerRooms[p.ID] = r.model.Code
	m.mu.Unlock()

	log.Info().Str("room", r.model.Code).Str("player", p.ID).Msg("player reconnected")
	m.broadcaster.ToUsers(r.playerIDs(p.ID), EventPlayerReconnected, map[string]any{"playerId": p.ID})
	m.broadcaster.ToUser(p.ID, EventRoomState, m.roomView(r, p.ID))
	if r.active {
		r.inst.OnPlayerReconnect(r.ctx, p)
		m.broadcaster.ToUser(p.ID, EventGameStateUpdate, map[string]any{
			"state": r.inst.StateFor(r.ctx, p.ID),
		})
	}
}

// LeaveRoom removes the caller from their room immediately.
func (m *RoomManager) LeaveRoom(userID string) error {
	if err := m.removePlayer(userID, "left"); err != nil {
		return err
	}
	m.broadcaster.ToUser(userID, EventRoomLeft, nil)
	return nil
}

// HandleDisconnect marks the player disconnected and arms the reconnect
// grace timer. A stale connID (the player already reconnected elsewhere)
// is ignored.
func (m *RoomManager) HandleDisconnect(userID, connID string) {
	m.mu.RLock()
	code, inRoom := m.playerRooms[userID]
	r := m.rooms[code]
	m.mu.RUnlock()
	if !inRoom || r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.model.Players[userID]
	if !ok || r.destroyed || p.ConnID != connID {
		return
	}
	p.IsConnected = false
	p.ConnID = ""
	r.model.UpdatedAt = time.Now()

	log.Info().Str("room", code).Str("player", userID).Dur("grace", m.gracePeriod).Msg("player disconnected")
	m.broadcaster.ToUsers(r.playerIDs(userID), EventPlayerDisconnected, map[string]any{"playerId": userID})

	t := time.AfterFunc(m.gracePeriod, func() {
		m.removeIfStillDisconnected(code, userID)
	})
	if h, pending := r.grace[userID]; pending {
		h.Cancel()
	}
	r.grace[userID] = &timerHandle{stop: func() { t.Stop() }}
}

// removeIfStillDisconnected is the grace-timer expiry path.
func (m *RoomManager) removeIfStillDisconnected(code, userID string) {
	m.mu.RLock()
	r := m.rooms[code]
	m.mu.RUnlock()
	if r == nil {
		return
	}
	r.mu.Lock()
	p, ok := r.model.Players[userID]
	stillGone := ok && !p.IsConnected
	r.mu.Unlock()
	if !stillGone {
		return
	}
	if err := m.removePlayer(userID, "timeout"); err != nil {
		log.Debug().Err(err).Str("room", code).Str("player", userID).Msg("grace expiry removal skipped")
	}
}

// removePlayer fully removes a player: game leave hook, host re-election,
// and synchronous room destruction once the player set empties.
func (m *RoomManager) removePlayer(userID, reason string) error {
	m.mu.Lock()
	code, inRoom := m.playerRooms[userID]
	if !inRoom {
		m.mu.Unlock()
		return ErrNotInRoom
	}
	r := m.rooms[code]
	delete(m.playerRooms, userID)
	m.mu.Unlock()
	if r == nil {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	p, ok := r.model.Players[userID]
	if !ok || r.destroyed {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	if h, pending := r.grace[userID]; pending {
		h.Cancel()
		delete(r.grace, userID)
	}
	delete(r.model.Players, userID)
	r.model.UpdatedAt = time.Now()

	log.Info().Str("room", code).Str("player", userID).Str("reason", reason).Msg("player removed")
	m.broadcaster.ToUsers(r.playerIDs(), EventPlayerLeft, map[string]any{
		"playerId": userID,
		"reason":   reason,
	})

	if r.active {
		r.inst.OnPlayerLeave(r.ctx, p)
	}

	if r.model.HostID == userID && len(r.model.Players) > 0 {
		newHost := r.model.PlayersByJoinTime()[0]
		r.model.HostID = newHost.ID
		m.broadcaster.ToUsers(r.playerIDs(), EventHostChanged, map[string]any{"hostId": newHost.ID})
	}

	empty := len(r.model.Players) == 0
	if empty {
		r.destroyed = true
		r.active = false
		r.model.Status = model.RoomAbandoned
		r.timers.CancelAll()
		r.cancelGraceTimers()
	}
	r.mu.Unlock()

	if empty {
		m.mu.Lock()
		delete(m.rooms, code)
		m.mu.Unlock()
		log.Info().Str("room", code).Msg("room destroyed")
	}
	return nil
}

// SetPlayerReady toggles the caller's ready flag.
func (m *RoomManager) SetPlayerReady(userID string, ready bool) error {
	return m.withPlayerRoom(userID, func(r *room, p *model.Player) error {
		p.IsReady = ready
		r.model.UpdatedAt = time.Now()
		m.broadcaster.ToUsers(r.playerIDs(), EventPlayerReady, map[string]any{
			"playerId": userID,
			"isReady":  ready,
		})
		return nil
	})
}

// UpdateSettings merges host-supplied overrides while the room is still
// in the lobby.
func (m *RoomManager) UpdateSettings(userID string, overrides model.GameSettings) error {
	return m.withPlayerRoom(userID, func(r *room, p *model.Player) error {
		if r.model.HostID != userID {
			return ErrNotHost
		}
		if r.model.Status != model.RoomLobby {
			return ErrGameInProgress
		}
		r.model.Settings = r.model.Settings.Merge(overrides)
		r.model.UpdatedAt = time.Now()
		r.inst.OnSettingsUpdate(r.ctx)
		m.broadcaster.ToUsers(r.playerIDs(), EventSettingsUpdated, map[string]any{
			"settings": r.model.Settings,
		})
		return nil
	})
}

// StartGame validates and begins the countdown. The countdown never holds
// a lock; activation happens as a later event on the room.
func (m *RoomManager) StartGame(userID string) error {
	return m.withPlayerRoom(userID, func(r *room, p *model.Player) error {
		if r.model.HostID != userID {
			return ErrNotHost
		}
		if r.model.Status != model.RoomLobby {
			return ErrGameInProgress
		}
		if r.model.ConnectedCount() < r.def.Info().MinPlayers {
			return ErrInsufficientPlayers
		}
		if err := r.inst.CheckStart(r.ctx); err != nil {
			return err
		}

		r.model.Status = model.RoomStarting
		r.model.UpdatedAt = time.Now()
		countdown := int(m.startCountdown / time.Second)
		m.broadcaster.ToUsers(r.playerIDs(), EventGameStarting, map[string]any{
			"countdownSeconds": countdown,
		})
		log.Info().Str("room", r.model.Code).Msg("game starting")

		r.timers.After(m.startCountdown, func() {
			m.runInRoom(r.model.Code, m.activateGame)
		})
		return nil
	})
}

// activateGame runs when the start countdown elapses. Caller (runInRoom)
// holds the room lock.
func (m *RoomManager) activateGame(r *room) {
	if r.model.Status != model.RoomStarting {
		return
	}
	if r.model.ConnectedCount() < r.def.Info().MinPlayers {
		// Everyone but the host bailed during the countdown.
		r.model.Status = model.RoomLobby
		m.broadcaster.ToUsers(r.playerIDs(), EventRoomState, m.roomView(r, ""))
		return
	}

	r.model.Status = model.RoomActive
	r.model.UpdatedAt = time.Now()
	r.startedAt = time.Now()
	r.state = r.inst.InitialState(r.ctx)
	r.active = true

	for _, p := range r.model.PlayersByJoinTime() {
		m.broadcaster.ToUser(p.ID, EventGameStarted, map[string]any{
			"state": r.inst.StateFor(r.ctx, p.ID),
		})
	}
	log.Info().Str("room", r.model.Code).Str("game", r.model.GameID).Msg("game started")
	r.inst.OnStart(r.ctx)
}

// HandleGameAction forwards a timestamped action record to the active
// game and returns its result verbatim.
func (m *RoomManager) HandleGameAction(userID, actionType string, payload map[string]any) (game.Result, error) {
	var res game.Result
	err := m.withPlayerRoom(userID, func(r *room, p *model.Player) error {
		if r.model.Status != model.RoomActive || !r.active {
			return ErrGameNotActive
		}
		res = r.inst.HandleAction(r.ctx, p, game.Action{
			Type:     actionType,
			PlayerID: userID,
			Payload:  payload,
			At:       time.Now(),
		})
		return nil
	})
	return res, err
}

// finishGame finalizes an ended game: produce the result, flip the room
// to finished, broadcast, and hand the result to the recorder. Invoked by
// the game context, never by players directly.
func (m *RoomManager) finishGame(code, reason string) {
	m.mu.RLock()
	r := m.rooms[code]
	m.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	if r.destroyed || r.model.Status != model.RoomActive {
		r.mu.Unlock()
		return
	}
	result := r.inst.FinalResult(r.ctx)
	result.ID = uuid.NewString()
	result.RoomCode = code
	result.TeamID = r.model.TeamID
	result.DurationMs = time.Since(r.startedAt).Milliseconds()
	result.EndedAt = time.Now()

	r.model.Status = model.RoomFinished
	r.model.UpdatedAt = time.Now()
	recipients := r.playerIDs()
	r.mu.Unlock()

	log.Info().Str("room", code).Str("reason", reason).Int64("durationMs", result.DurationMs).Msg("game ended")
	m.broadcaster.ToUsers(recipients, EventGameEnded, map[string]any{
		"reason": reason,
		"result": result,
	})

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := m.recorder.Record(ctx, result); err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to record game result")
	}
}

// RoomsByTeam lists a team's live rooms.
func (m *RoomManager) RoomsByTeam(teamID string) []model.RoomSummary {
	return m.summaries(func(r *model.Room) bool { return r.TeamID == teamID })
}

// AllRooms lists every live room.
func (m *RoomManager) AllRooms() []model.RoomSummary {
	return m.summaries(func(*model.Room) bool { return true })
}

func (m *RoomManager) summaries(keep func(*model.Room) bool) []model.RoomSummary {
	m.mu.RLock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.destroyed && keep(r.model) {
			hostName := ""
			if host, ok := r.model.Players[r.model.HostID]; ok {
				hostName = host.Name
			}
			out = append(out, model.RoomSummary{
				Code:        r.model.Code,
				GameID:      r.model.GameID,
				TeamID:      r.model.TeamID,
				HostName:    hostName,
				PlayerCount: len(r.model.Players),
				MaxPlayers:  r.def.Info().MaxPlayers,
				Status:      r.model.Status,
				CreatedAt:   r.model.CreatedAt,
			})
		}
		r.mu.Unlock()
	}
	return out
}

// runInRoom runs fn under the room's lock if the room still exists.
// Timer callbacks funnel through here so a callback that outlives its
// room silently no-ops.
func (m *RoomManager) runInRoom(code string, fn func(*room)) {
	m.mu.RLock()
	r := m.rooms[code]
	m.mu.RUnlock()
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	fn(r)
}

// withPlayerRoom resolves the caller's room and runs fn under its lock.
func (m *RoomManager) withPlayerRoom(userID string, fn func(*room, *model.Player) error) error {
	m.mu.RLock()
	code, inRoom := m.playerRooms[userID]
	r := m.rooms[code]
	m.mu.RUnlock()
	if !inRoom || r == nil {
		return ErrNotInRoom
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrNotInRoom
	}
	p, ok := r.model.Players[userID]
	if !ok {
		return ErrNotInRoom
	}
	return fn(r, p)
}

// roomView builds the full room payload for one player, including their
// filtered game-state view while a game is running. Caller holds r.mu.
func (m *RoomManager) roomView(r *room, playerID string) map[string]any {
	view := map[string]any{
		"code":      r.model.Code,
		"gameId":    r.model.GameID,
		"teamId":    r.model.TeamID,
		"hostId":    r.model.HostID,
		"status":    r.model.Status,
		"settings":  r.model.Settings,
		"players":   r.model.PlayersByJoinTime(),
		"game":      r.def.Info(),
		"createdAt": r.model.CreatedAt,
	}
	if r.active && playerID != "" {
		view["gameState"] = r.inst.StateFor(r.ctx, playerID)
	}
	return view
}
