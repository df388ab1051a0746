package ports

import (
	"context"

	"file-share-api/internal/domain/file"
)

// EventPublisher ships file events to a broker in the background. Publish
// never blocks the request path.
type EventPublisher interface {
	Publish(e file.Event)
	PublisherWorker(ctx context.Context)
	Close() error
}
