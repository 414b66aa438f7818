package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims minted by the external auth collaborator.
// They carry the verified identity triple; this service only validates
// the signature and trusts the contents.
type UserClaims struct {
	UserID string `json:"userId"`
	Name   string `json:"displayName"`
	TeamID string `json:"teamId"`
	jwt.RegisteredClaims
}

// Identity returns the claims as the plain identity triple.
func (c *UserClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Name: c.Name, TeamID: c.TeamID}
}
