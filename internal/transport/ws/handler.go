package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"teamplay/internal/model"
	"teamplay/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // stroke batches can be large
)

// Client message types.
const (
	MsgRoomCreate     = "room-create"
	MsgRoomJoin       = "room-join"
	MsgRoomLeave      = "room-leave"
	MsgRoomReady      = "room-ready"
	MsgUpdateSettings = "room-update-settings"
	MsgGameStart      = "game-start"
	MsgGameAction     = "game-action"
	MsgPing           = "ping"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin checks handled by the platform proxy
	},
}

// Handler upgrades connections and routes client messages to the room
// manager.
type Handler struct {
	hub     *Hub
	manager *service.RoomManager
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, manager *service.RoomManager, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		authSvc: authSvc,
	}
}

// Connect handles GET /v1/ws
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	id, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		ID:     uuid.NewString(),
		UserID: id.UserID,
		Send:   make(chan []byte, 256),
		Hub:    h.hub,
	}
	h.hub.Register(conn)

	// A user reconnecting to an existing room seat is re-attached on
	// their next room-join; the connection itself carries no room state.
	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, id)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, id model.Identity) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		h.manager.HandleDisconnect(id.UserID, conn.ID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("user", id.UserID).Msg("websocket read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed message")
			continue
		}
		h.dispatch(conn, id, msg)
	}
}

func (h *Handler) dispatch(conn *Connection, id model.Identity, msg Message) {
	switch msg.Type {
	case MsgPing:
		h.hub.ToUser(id.UserID, "pong", nil)

	case MsgRoomCreate:
		var p struct {
			GameID   string             `json:"gameId"`
			Settings model.GameSettings `json:"settings"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed payload")
			return
		}
		h.reportErr(id.UserID, h.manager.CreateRoom(id, conn.ID, p.GameID, p.Settings))

	case MsgRoomJoin:
		var p struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed payload")
			return
		}
		h.reportErr(id.UserID, h.manager.JoinRoom(id, conn.ID, p.Code))

	case MsgRoomLeave:
		h.reportErr(id.UserID, h.manager.LeaveRoom(id.UserID))

	case MsgRoomReady:
		var p struct {
			IsReady bool `json:"isReady"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed payload")
			return
		}
		h.reportErr(id.UserID, h.manager.SetPlayerReady(id.UserID, p.IsReady))

	case MsgUpdateSettings:
		var p struct {
			Settings model.GameSettings `json:"settings"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed payload")
			return
		}
		h.reportErr(id.UserID, h.manager.UpdateSettings(id.UserID, p.Settings))

	case MsgGameStart:
		h.reportErr(id.UserID, h.manager.StartGame(id.UserID))

	case MsgGameAction:
		var p struct {
			Action string         `json:"action"`
			Data   map[string]any `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(id.UserID, "bad_request", "malformed payload")
			return
		}
		res, err := h.manager.HandleGameAction(id.UserID, p.Action, p.Data)
		if err != nil {
			h.reportErr(id.UserID, err)
			return
		}
		if !res.Success {
			h.sendError(id.UserID, res.Code, res.Error)
		}

	default:
		h.sendError(id.UserID, "bad_request", "unknown message type: "+msg.Type)
	}
}

// reportErr converts a service error into an error event on the caller's
// own connection. Errors are never broadcast.
func (h *Handler) reportErr(userID string, err error) {
	if err == nil {
		return
	}
	h.sendError(userID, service.ErrorCode(err), err.Error())
}

func (h *Handler) sendError(userID, code, message string) {
	h.hub.ToUser(userID, service.EventError, map[string]any{
		"code":    code,
		"message": message,
	})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
