package kvstore

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("kvstore: engine closed")

// Engine is a byte-oriented key-value store.
type Engine interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Keys lists every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Flush makes previous writes durable.
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
