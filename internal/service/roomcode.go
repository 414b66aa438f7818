package service

import (
	"crypto/rand"
	"fmt"
)

// Ambiguous characters (0/O, 1/I) are excluded so codes survive being
// read aloud or typed from a projector.
const (
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength = 6
)

// newRoomCode generates one random room code candidate.
func newRoomCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeChars[int(b[i])%len(codeChars)]
	}
	return string(code), nil
}
