package model

import "time"

// Player represents a participant in a room. A player belongs to at most
// one room at a time; the owning room serializes all mutations.
type Player struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	ConnID      string    `json:"-" bson:"-"` // current connection ref, empty while disconnected
	IsReady     bool      `json:"isReady" bson:"isReady"`
	IsConnected bool      `json:"isConnected" bson:"isConnected"`
	Score       int       `json:"score" bson:"score"`
	JoinedAt    time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Identity is the verified (userId, displayName, teamId) triple supplied
// by the auth collaborator with every connection. The core trusts it.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"displayName"`
	TeamID string `json:"teamId"`
}
