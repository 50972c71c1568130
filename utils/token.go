package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminScope is the only scope the service issues.
const AdminScope = "admin"

// Claims carries the admin identity inside an access token.
type Claims struct {
	Username string `json:"username"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

var parseTokenWithClaims = func(tokenStr string, claims *Claims, secret []byte) (*jwt.Token, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	return parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
}

// GenerateAccessToken signs an HS256 token for the admin session.
func GenerateAccessToken(claims Claims, ttl time.Duration, issuer string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	now := time.Now()
	if claims.Scope == "" {
		claims.Scope = AdminScope
	}
	claims.Issuer = issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken validates a token and returns its claims if valid.
func ParseAccessToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := parseTokenWithClaims(tokenStr, claims, secret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
