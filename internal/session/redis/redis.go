package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"newsrag/internal/domain"
)

// Config holds the Redis connection settings.
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	KeyPrefix   string
}

// Connect opens a client and verifies the server answers PING.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, domain.Wrap(err, domain.ErrSessionStore, "connecting to redis", "addr", cfg.Addr)
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, domain.Errorf(domain.ErrSessionStore, "expected PONG, got %s", pong)
	}
	return client, nil
}

// Store keeps each session history as one JSON value under <prefix><id>
// with a Redis-enforced TTL.
type Store struct {
	client goredis.Cmdable
	prefix string
}

func NewStore(client goredis.Cmdable, prefix string) *Store {
	if prefix == "" {
		prefix = "chat:"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) Get(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []domain.Turn{}, nil
	}
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrSessionStore, "reading history", "session_id", sessionID)
	}
	var history []domain.Turn
	if err := json.Unmarshal(val, &history); err != nil {
		return nil, domain.Wrap(err, domain.ErrSessionStore, "decoding history", "session_id", sessionID)
	}
	if history == nil {
		history = []domain.Turn{}
	}
	return history, nil
}

func (s *Store) Set(ctx context.Context, sessionID string, history []domain.Turn, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.Errorf(domain.ErrValidation, "session ttl must be positive, got %s", ttl)
	}
	if history == nil {
		history = []domain.Turn{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return domain.Wrap(err, domain.ErrSessionStore, "encoding history", "session_id", sessionID)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return domain.Wrap(err, domain.ErrSessionStore, "writing history", "session_id", sessionID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, domain.Wrap(err, domain.ErrSessionStore, "deleting history", "session_id", sessionID)
	}
	return n > 0, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
