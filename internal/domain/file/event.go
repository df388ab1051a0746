package file

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionUploaded   = "file.uploaded"
	ActionDeleted    = "file.deleted"
	ActionDownloaded = "file.downloaded"
)

type Event struct {
	ID         uuid.UUID `json:"event_id"`
	TS         time.Time `json:"time_stamp"`
	Action     string    `json:"event_action"`
	FileID     ID        `json:"file_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	ShareToken string    `json:"share_token,omitempty"`
}

func NewEvent(action string, f *File) Event {
	return Event{
		ID:         uuid.New(),
		TS:         time.Now().UTC(),
		Action:     action,
		FileID:     f.ID,
		OwnerID:    f.OwnerID,
		Name:       f.Name,
		SizeBytes:  f.SizeBytes,
		ShareToken: f.ShareToken,
	}
}
