package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

type RedisConfig struct {
	Addr      string        `envconfig:"ADDR" split_words:"true" default:"localhost:6379"`
	Password  string        `envconfig:"PASSWORD" split_words:"true"`
	DB        int           `envconfig:"DB" split_words:"true" default:"0"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"flavia:session:"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// RedisStore persists sessions as JSON strings, one key per session id.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreFromClient(client, cfg.KeyPrefix, cfg.TTL)
}

// NewRedisStoreFromClient wraps an existing client (single node, cluster or sentinel).
// A ttl of zero keeps sessions forever.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return decodeSession(payload)
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if err := prepareSave(sess); err != nil {
		return err
	}
	payload, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sess.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
