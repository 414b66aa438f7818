package service

// Outbound event vocabulary of the realtime channel. Game-specific events
// are namespaced "<gameId>:<event>" and produced by game code itself.
const (
	EventRoomCreated         = "room-created"
	EventRoomJoined          = "room-joined"
	EventRoomLeft            = "room-left"
	EventRoomState           = "room-state"
	EventPlayerJoined        = "room-player-joined"
	EventPlayerLeft          = "room-player-left"
	EventPlayerReady         = "room-player-ready"
	EventPlayerDisconnected  = "room-player-disconnected"
	EventPlayerReconnected   = "room-player-reconnected"
	EventHostChanged         = "room-host-changed"
	EventSettingsUpdated     = "room-settings-updated"
	EventGameStarting        = "game-starting"
	EventGameStarted         = "game-started"
	EventGameStateUpdate     = "game-state-update"
	EventGameEnded           = "game-ended"
	EventError               = "error"
)
