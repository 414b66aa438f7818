package service

import (
	"errors"
	"time"

	"teamplay/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates the signed identity tokens issued by the main
// platform. This service never issues tokens to real users; IssueToken
// exists for local development and tests.
type AuthService struct {
	jwtSecret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// ValidateToken verifies a user JWT and returns the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return claims.Identity(), nil
}

// IssueToken signs an identity token. Development and test helper.
func (s *AuthService) IssueToken(id model.Identity, ttl time.Duration) (string, error) {
	claims := &model.UserClaims{
		UserID: id.UserID,
		Name:   id.Name,
		TeamID: id.TeamID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
