// Package redis implements session persistence on Redis so sessions survive
// restarts and can be shared between instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"healthvault/internal/domain"
)

const keyPrefix = "healthvault:session:"

// SessionRepo stores sessions as JSON values with a TTL matching their
// expiry, so DeleteExpired has nothing left to do.
type SessionRepo struct {
	client *redis.Client
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

// Open parses a redis:// URL, connects, and pings.
func Open(ctx context.Context, url string) (*SessionRepo, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(options)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &SessionRepo{client: client}, nil
}

// Close closes the underlying client.
func (r *SessionRepo) Close() error {
	return r.client.Close()
}

// Create stores a new session keyed by token.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	s := domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return r.client.Set(ctx, keyPrefix+token, payload, ttl).Err()
}

// GetByToken retrieves a session by token, nil when missing or expired.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, keyPrefix+token).Err()
}

// DeleteExpired is a no-op; Redis evicts sessions via their TTL.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}
