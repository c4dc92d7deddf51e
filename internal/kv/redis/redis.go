// Package redis is the Redis backend for the KV port and the income dataset.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"duka/internal/core"
)

const (
	// DefaultPrefix namespaces every key written by the store.
	DefaultPrefix = "duka:"
	datasetKey    = "dataset"
)

// Options configure the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// Connect dials Redis, pings it and seeds the dataset if absent.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	s := NewWithClient(rdb, opts.Prefix)
	if err := s.seedDataset(ctx); err != nil {
		rdb.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)
	return s, nil
}

// NewWithClient wraps an existing client. An empty prefix means DefaultPrefix.
func NewWithClient(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) seedDataset(ctx context.Context) error {
	raw, err := json.Marshal(core.IncomeFixture())
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := s.rdb.SetNX(ctx, s.key(datasetKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	return nil
}

// ReadDataset implements ports.DatasetReader.
func (s *Store) ReadDataset(ctx context.Context) ([]core.MonthlyRecord, error) {
	raw, found, err := s.Get(ctx, datasetKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return core.IncomeFixture(), nil
	}
	var data []core.MonthlyRecord
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return data, nil
}

// Get implements ports.KVStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements ports.KVStore. Entries never expire.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements ports.KVStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping implements the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
