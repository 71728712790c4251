// Package cache stores computed layouts keyed by their inputs.
//
// A layout is a pure function of the resource collections and the layout
// configuration, so the pipeline hashes both and looks the result up before
// recomputing. Backends:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: shared cache for `taloscope serve` replicas
//   - [MongoCache]: durable cache with a TTL index
//
// Wrap any backend with [Instrument] to report hits and misses through
// the observability hooks.
package cache

import (
	"context"
	"time"

	"github.com/taloscope/taloscope/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear drops every entry in c, if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if ic, ok := c.(*instrumented); ok {
		c = ic.Cache
	}
	cl, ok := c.(Clearer)
	if !ok {
		return nil
	}
	return cl.Clear(ctx)
}

type instrumented struct {
	Cache
	backend string
}

// Instrument reports every Get and Set on c to observability.Cache().
func Instrument(c Cache, backend string) Cache {
	return &instrumented{Cache: c, backend: backend}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.backend)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.backend)
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	}
	return err
}
