package database

import (
	"context"
	"errors"
	"strings"

	"github.com/coldenflo/ICeducation/services/digitalocean"
)

// SpacesStore keeps one object per key under a fixed prefix in a Spaces
// bucket. Writes are whole-object replacements.
type SpacesStore struct {
	client *digitalocean.SpacesClient
	prefix string
}

func NewSpacesStore(client *digitalocean.SpacesClient, prefix string) *SpacesStore {
	return &SpacesStore{client: client, prefix: prefix}
}

func (s *SpacesStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetObject(ctx, s.prefix+key)
	if errors.Is(err, digitalocean.ErrObjectNotFound) {
		return nil, ErrKeyNotFound
	}
	return data, err
}

func (s *SpacesStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.PutObject(ctx, s.prefix+key, value, "application/json")
}

func (s *SpacesStore) Delete(ctx context.Context, key string) error {
	return s.client.DeleteObject(ctx, s.prefix+key)
}

func (s *SpacesStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.client.ListKeys(ctx, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, strings.TrimPrefix(o, s.prefix))
	}
	return keys, nil
}

func (s *SpacesStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *SpacesStore) Close() error { return nil }
