package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID               uuid.UUID  `json:"id"`
		Name             string     `json:"name"`
		MimeType         string     `json:"mime_type"`
		SizeBytes        int64      `json:"size_bytes"`
		ShareToken       string     `json:"share_token"`
		ShareURL         string     `json:"share_url"`
		CreatedAt        time.Time  `json:"created_at"`
		DownloadCount    int64      `json:"download_count"`
		LastDownloadedAt *time.Time `json:"last_downloaded_at,omitempty"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}

	Share struct {
		Name          string    `json:"name"`
		MimeType      string    `json:"mime_type"`
		SizeBytes     int64     `json:"size_bytes"`
		CreatedAt     time.Time `json:"created_at"`
		OwnerName     string    `json:"owner_name,omitempty"`
		DownloadCount int64     `json:"download_count"`
		DownloadPath  string    `json:"download_path"`
	}

	Download struct {
		URL       string `json:"url"`
		Name      string `json:"name"`
		ExpiresIn int    `json:"expires_in"`
	}
)
