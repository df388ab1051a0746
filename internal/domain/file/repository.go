package file

import (
	"context"
)

// Repository persists File records. Implementations must enforce share token
// uniqueness and apply download increments atomically in the store.
type Repository interface {
	CreateFile(ctx context.Context, f *File) (*File, error)
	FetchOwnerFiles(ctx context.Context, ownerID string) (Files, error)
	FetchByID(ctx context.Context, id ID) (*File, error)
	FetchByShareToken(ctx context.Context, token string) (*File, error)
	IncrementDownloads(ctx context.Context, id ID) error
	DeleteFile(ctx context.Context, id ID, ownerID string) error
}
