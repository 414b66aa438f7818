package model

import (
	"sort"
	"time"
)

type RoomStatus string

const (
	RoomLobby     RoomStatus = "lobby"
	RoomStarting  RoomStatus = "starting"
	RoomActive    RoomStatus = "active"
	RoomFinished  RoomStatus = "finished"
	RoomAbandoned RoomStatus = "abandoned"
)

// Room is one isolated match instance identified by a short code. It is
// the unit of concurrency isolation: exactly one logical operation
// mutates a given room's state at a time.
type Room struct {
	Code      string             `json:"code" bson:"code"`
	GameID    string             `json:"gameId" bson:"gameId"`
	TeamID    string             `json:"teamId" bson:"teamId"`
	HostID    string             `json:"hostId" bson:"hostId"`
	Players   map[string]*Player `json:"players" bson:"players"`
	Settings  GameSettings       `json:"settings" bson:"settings"`
	Status    RoomStatus         `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PlayersByJoinTime returns the room's players ordered by join time
// (ties by ID). Go maps are unordered; join order stands in for the
// insertion order every ordering rule in the engine is defined against.
func (r *Room) PlayersByJoinTime() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// ConnectedCount reports how many players are currently connected.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

// RoomSummary is the public listing view of a room.
type RoomSummary struct {
	Code        string     `json:"code"`
	GameID      string     `json:"gameId"`
	TeamID      string     `json:"teamId"`
	HostName    string     `json:"hostName"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	Status      RoomStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}
