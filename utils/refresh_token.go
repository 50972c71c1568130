package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const refreshTokenBytes = 32

var (
	randRead = rand.Read
	newUUID  = uuid.NewRandom
)

// GenerateRefreshToken returns an opaque URL-safe token. Only its hash is
// ever persisted.
func GenerateRefreshToken() (string, error) {
	buffer := make([]byte, refreshTokenBytes)
	if _, err := randRead(buffer); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewSessionID names an admin login session. Rotated refresh tokens keep the
// session ID of the login that started the chain.
func NewSessionID() (string, error) {
	id, err := newUUID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return id.String(), nil
}
