package kvstore

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// RedisEngine stores entries as plain Redis strings under a namespace.
type RedisEngine struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisEngine accepts either a redis:// URL or a bare host:port.
func NewRedisEngine(url, namespace string) *RedisEngine {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	return NewRedisEngineFromClient(redis.NewClient(opt), namespace)
}

func NewRedisEngineFromClient(rdb *redis.Client, namespace string) *RedisEngine {
	if namespace != "" && !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return &RedisEngine{rdb: rdb, namespace: namespace}
}

func (e *RedisEngine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := e.rdb.Get(ctx, e.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (e *RedisEngine) Set(ctx context.Context, key string, value []byte) error {
	return e.rdb.Set(ctx, e.namespace+key, value, 0).Err()
}

func (e *RedisEngine) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = e.namespace + k
	}
	return e.rdb.Del(ctx, full...).Err()
}

func (e *RedisEngine) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := globEscaper.Replace(e.namespace+prefix) + "*"
	keys := make([]string, 0)
	iter := e.rdb.Scan(ctx, 0, match, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), e.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Flush is a no-op; Redis owns durability.
func (e *RedisEngine) Flush(ctx context.Context) error {
	return nil
}

func (e *RedisEngine) Ping(ctx context.Context) error {
	return e.rdb.Ping(ctx).Err()
}

func (e *RedisEngine) Close() error {
	return e.rdb.Close()
}
