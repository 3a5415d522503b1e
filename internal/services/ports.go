package services

import (
	"context"
	"io"
	"time"

	"arthemis/internal/metrics"

	"go.uber.org/zap"
)

// ImageStore hosts artwork images on the CDN.
type ImageStore interface {
	// Upload stores the image and returns its public, transformed URL.
	Upload(ctx context.Context, artworkID, filename, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes a previously uploaded image by URL.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points at an image hosted by this store.
	Owns(url string) bool
}

// EventPublisher hands domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Routing keys of the domain events.
const (
	EventArtworkCreated       = "artwork.created"
	EventArtworkDeleted       = "artwork.deleted"
	EventCollectionCreated    = "collection.created"
	EventCollectionDeleted    = "collection.deleted"
	EventPasswordResetRequest = "auth.password_reset_requested"
)

// Event is the envelope of every published domain event.
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// publishEvent publishes best-effort: failures are logged and counted, never
// returned.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.SugaredLogger, key string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, key, Event{Type: key, OccurredAt: time.Now().UTC(), Data: data})
	metrics.RecordEvent(key, err)
	if err != nil {
		log.Warnw("failed to publish event", "type", key, "error", err)
	}
}
