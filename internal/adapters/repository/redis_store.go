package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/ports"
)

// RedisStore keeps the whole document as one JSON string value
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a document store stored under "<prefix>:document:<name>"
func NewRedisStore(client *redis.Client, prefix, name string) ports.DocumentStore {
	key := fmt.Sprintf("document:%s", name)
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &RedisStore{client: client, key: key}
}

// Key returns the redis key holding the document
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) EnsureInitialized(ctx context.Context) error {
	seed, err := encodeDocument(entities.SeedDocument())
	if err != nil {
		return entities.NewStorageError("init", err)
	}

	// SETNX leaves an existing document untouched
	if err := s.client.SetNX(ctx, s.key, seed, 0).Err(); err != nil {
		return entities.NewStorageError("init", fmt.Errorf("seed key %q: %w", s.key, err))
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*entities.Document, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.NewStorageError("load", fmt.Errorf("key %q disappeared after seeding", s.key))
		}
		return nil, entities.NewStorageError("load", fmt.Errorf("get key %q: %w", s.key, err))
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, entities.NewStorageError("load", fmt.Errorf("key %q: %w", s.key, err))
	}
	return doc, nil
}

func (s *RedisStore) Save(ctx context.Context, doc *entities.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return entities.NewStorageError("save", fmt.Errorf("encode document: %w", err))
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return entities.NewStorageError("save", fmt.Errorf("set key %q: %w", s.key, err))
	}
	return nil
}

// Close is a no-op; the client is owned by the caller
func (s *RedisStore) Close() error {
	return nil
}
