package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(Claims{Username: "admin"}, time.Minute, "issuer", []byte("one"))
	assert.NoError(t, err)

	_, err = ParseAccessToken(token, []byte("two"))
	assert.Error(t, err)
}

func TestParseAccessTokenInvalidMethod(t *testing.T) {
	now := time.Now()
	claims := Claims{
		Username: "admin",
		Scope:    AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "issuer",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("secret"))
	assert.NoError(t, err)

	_, err = ParseAccessToken(signed, []byte("secret"))
	assert.Error(t, err)
}

func TestParseAccessTokenInvalidFlag(t *testing.T) {
	originalParse := parseTokenWithClaims
	parseTokenWithClaims = func(tokenStr string, claims *Claims, secret []byte) (*jwt.Token, error) {
		return &jwt.Token{Valid: false}, nil
	}
	defer func() { parseTokenWithClaims = originalParse }()

	_, err := ParseAccessToken("token", []byte("secret"))
	assert.Error(t, err)
}
