// Package storage provides the key-value persistence boundary. State is kept
// as keyed JSON blobs; a missing or malformed blob degrades to absence so the
// callers fall back to an empty collection.
package storage

import "context"

// Persisted state layout.
const (
	// UsersKey holds the full user collection.
	UsersKey = "financial_tracker_users"
	// SessionKey holds a denormalized snapshot of the signed-in user.
	SessionKey = "current_financial_user"
)

// Store is the minimal key-value contract the domain depends on.
type Store interface {
	// Get returns the blob for key, with found=false when absent.
	Get(ctx context.Context, key string) (blob []byte, found bool, err error)
	Set(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}
