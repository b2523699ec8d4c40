// Package metadata is the client's local key/value store. It keeps the
// session tokens and the autosave drafts.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns nil, nil for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
}
