package file

import (
	"time"

	"github.com/google/uuid"
)

const DefaultMimeType = "application/octet-stream"

type (
	ID   = uuid.UUID
	File struct {
		ID      ID
		OwnerID string

		Name        string
		MimeType    string
		SizeBytes   int64
		StoragePath string
		ShareToken  string

		CreatedAt time.Time

		DownloadCount    int64
		LastDownloadedAt *time.Time
	}
	Files []*File
)
