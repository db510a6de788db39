// Package provider defines the storage abstraction used by cacheaside.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// The string form used by callers that think in strings is string(value).
package provider

import (
	"context"
)

// Provider is a minimal byte store with expiration metadata.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A nil exp means "use the store default".
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, exp *Expiration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
