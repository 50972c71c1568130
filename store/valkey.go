package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-service/config"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenStore keeps admin refresh sessions. Tokens are stored by hash;
// each session points at its single current token so a replayed, already
// rotated token can be detected.
type RefreshTokenStore interface {
	SaveToken(ctx context.Context, tokenHash string, metadata RefreshTokenMetadata, ttl time.Duration) error
	GetToken(ctx context.Context, tokenHash string) (RefreshTokenMetadata, bool, error)
	RevokeToken(ctx context.Context, tokenHash string) error
	SaveSession(ctx context.Context, sessionID string, session RefreshSession, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (RefreshSession, bool, error)
	RevokeSession(ctx context.Context, sessionID string) error
	MarkRevoked(ctx context.Context, tokenHash, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (string, bool, error)
	Close() error
}

type RefreshTokenMetadata struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
}

type RefreshSession struct {
	CurrentTokenHash string    `json:"current_token_hash"`
	Username         string    `json:"username"`
	IssuedAt         time.Time `json:"issued_at"`
}

type valkeyClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var (
	jsonMarshal     = json.Marshal
	newValkeyClient = func(cfg config.ValkeyConfig) valkeyClient {
		return redis.NewClient(&redis.Options{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: 5 * time.Second,
		})
	}
)

type ValkeyStore struct {
	client valkeyClient
	prefix string
}

func NewValkeyStore(cfg config.ValkeyConfig) (*ValkeyStore, error) {
	client := newValkeyClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("valkey ping failed: %w", err)
	}

	return &ValkeyStore{client: client, prefix: cfg.Prefix}, nil
}

func (v *ValkeyStore) SaveToken(ctx context.Context, tokenHash string, metadata RefreshTokenMetadata, ttl time.Duration) error {
	return v.setJSON(ctx, v.key("token", tokenHash), metadata, ttl)
}

func (v *ValkeyStore) GetToken(ctx context.Context, tokenHash string) (RefreshTokenMetadata, bool, error) {
	var metadata RefreshTokenMetadata
	found, err := v.getJSON(ctx, v.key("token", tokenHash), &metadata)
	return metadata, found, err
}

func (v *ValkeyStore) RevokeToken(ctx context.Context, tokenHash string) error {
	return v.client.Del(ctx, v.key("token", tokenHash)).Err()
}

func (v *ValkeyStore) SaveSession(ctx context.Context, sessionID string, session RefreshSession, ttl time.Duration) error {
	return v.setJSON(ctx, v.key("session", sessionID), session, ttl)
}

func (v *ValkeyStore) GetSession(ctx context.Context, sessionID string) (RefreshSession, bool, error) {
	var session RefreshSession
	found, err := v.getJSON(ctx, v.key("session", sessionID), &session)
	return session, found, err
}

func (v *ValkeyStore) RevokeSession(ctx context.Context, sessionID string) error {
	return v.client.Del(ctx, v.key("session", sessionID)).Err()
}

// MarkRevoked remembers a rotated token so a later replay can be traced
// back to its session.
func (v *ValkeyStore) MarkRevoked(ctx context.Context, tokenHash, sessionID string, ttl time.Duration) error {
	return v.client.Set(ctx, v.key("revoked", tokenHash), sessionID, ttl).Err()
}

func (v *ValkeyStore) IsRevoked(ctx context.Context, tokenHash string) (string, bool, error) {
	sessionID, err := v.client.Get(ctx, v.key("revoked", tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sessionID, true, nil
}

func (v *ValkeyStore) Close() error {
	if v.client == nil {
		return nil
	}
	return v.client.Close()
}

func (v *ValkeyStore) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", v.prefix, kind, id)
}

func (v *ValkeyStore) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := jsonMarshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return v.client.Set(ctx, key, payload, ttl).Err()
}

func (v *ValkeyStore) getJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	raw, err := v.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
