package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID      uuid.UUID
		OwnerID string

		Name        string
		MimeType    string
		SizeBytes   int64
		StoragePath string
		ShareToken  string

		CreatedAt        time.Time
		DownloadCount    int64
		LastDownloadedAt *time.Time
	}
	Files []*File
)
