package database

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been written or
// has been deleted.
var ErrKeyNotFound = errors.New("key not found")

// KeyValue is the durable string-keyed store the catalogue and session
// data live in. Values are opaque JSON documents.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, in no particular order
	Keys(ctx context.Context, prefix string) ([]string, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
