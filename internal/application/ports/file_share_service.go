package ports

import (
	"context"
	"io"
	"time"

	"file-share-api/internal/domain/file"
)

type (
	UploadInput struct {
		OwnerID   string
		Name      string
		MimeType  string
		SizeBytes int64
		Content   io.Reader
	}
	ShareView struct {
		Name             string
		MimeType         string
		SizeBytes        int64
		CreatedAt        time.Time
		OwnerDisplayName string
		DownloadCount    int64
	}
	Download struct {
		URL       string
		Name      string
		ExpiresIn time.Duration
	}
)

type FileShareService interface {
	Upload(ctx context.Context, in UploadInput) (*file.File, error)
	ListFiles(ctx context.Context, ownerID string) (file.Files, error)
	GetFile(ctx context.Context, callerID string, id file.ID) (*file.File, error)
	DeleteFile(ctx context.Context, callerID string, id file.ID) error
	ResolveShare(ctx context.Context, token string) (*ShareView, error)
	DownloadShare(ctx context.Context, token string) (*Download, error)
}

type OwnerDirectory interface {
	DisplayName(ctx context.Context, ownerID string) string
}

// DownloadRecorder accepts a download for counting without holding up the caller.
type DownloadRecorder interface {
	Record(ctx context.Context, id file.ID)
}
