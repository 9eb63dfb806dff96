package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "freshmart:session:"

// SessionStore keeps server-side login sessions.
type SessionStore interface {
	// Create stores a session for identity and returns its id.
	Create(ctx context.Context, identity model.Identity) (string, error)

	// Get returns the identity of a live session, or (nil, nil) when it is unknown or expired.
	Get(ctx context.Context, sessionID string) (*model.Identity, error)

	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore implements SessionStore with one Redis hash per session.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store on an existing client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Create stores a session for identity and returns its id.
func (s *RedisSessionStore) Create(ctx context.Context, identity model.Identity) (string, error) {
	id := uuid.NewString()
	key := sessionKey(id)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":         identity.ID.String(),
		"role":       string(identity.Role),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// Get returns the identity of a live session.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*model.Identity, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	id, err := uuid.Parse(fields["id"])
	role := model.Role(fields["role"])
	if err != nil || !role.Valid() {
		return nil, nil
	}
	return &model.Identity{ID: id, Role: role}, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
