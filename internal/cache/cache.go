package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/deepresearch/config"
)

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Close() error
}

type Type string

const (
	NoneType   Type = "none"
	MemoryType Type = "memory"
	RedisType  Type = "redis"
)

// New builds the cache selected by cfg.Type. "none" (or empty) yields nil.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch Type(cfg.Type) {
	case "", NoneType:
		return nil, nil
	case MemoryType:
		return NewMemory(), nil
	case RedisType:
		r := cfg.Redis
		client, err := Conn(ctx, r.Host, r.Port, r.Password, r.DB, r.Timeout)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, "deepresearch:"), nil
	default:
		return nil, fmt.Errorf("unsupported cache type %q", cfg.Type)
	}
}
