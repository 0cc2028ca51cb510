package cache

import "context"

// Store is the durable side-store capability behind the in-process tier.
// Implementations persist opaque blobs (the cache's JSON envelope) and are
// always optional: every error they return is swallowed by the cache, logged,
// and counted, never raised to the caller.
type Store interface {
	// Load returns (blob, true, nil) on hit and (nil, false, nil) when the
	// key is absent.
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Save persists the blob for key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Clear removes the key (best-effort).
	Clear(ctx context.Context, key string) error
}
