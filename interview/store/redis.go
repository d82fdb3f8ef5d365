package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/novexa-ai/interviewd/interview"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements record storage using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration for session records.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisStore creates a new Redis-based record store.
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config == nil {
		config = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "interviewd:session:",
			TTL:    24 * time.Hour,
		}
	}
	if config.Prefix == "" {
		config.Prefix = "interviewd:session:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// Save persists a session record to Redis.
func (s *RedisStore) Save(ctx context.Context, record *interview.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := s.client.Set(ctx, s.sessionKey(record.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}
	if err := s.client.SAdd(ctx, s.setKey(), record.ID).Err(); err != nil {
		return fmt.Errorf("failed to add session record to index: %w", err)
	}
	return nil
}

// Load loads a session record from Redis.
func (s *RedisStore) Load(ctx context.Context, id string) (*interview.Record, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session record %s not found", id)
		}
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}

	var record interview.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &record, nil
}

// Delete removes a session record from Redis.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	if err := s.client.SRem(ctx, s.setKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove session record from index: %w", err)
	}
	return nil
}

// List returns all record ids known to Redis.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	return ids, nil
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + id
}

func (s *RedisStore) setKey() string {
	return s.prefix + "ids"
}
