package cache

import (
	"context"
	"time"
)

// NullCache misses on every lookup and drops every write. The runner falls
// back to it when no backend is configured, and --no-cache selects it.
type NullCache struct{}

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Clear(context.Context) error { return nil }
func (NullCache) Close() error { return nil }
