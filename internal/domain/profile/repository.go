package profile

import "context"

// Repository looks up the public display name of a file owner.
// An unknown owner yields an empty name and no error.
type Repository interface {
	FetchDisplayName(ctx context.Context, ownerID string) (string, error)
}
