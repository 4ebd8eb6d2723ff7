package ports

import (
	"context"

	"github.com/orbitcap/orbitcap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishIngest(ctx context.Context, event *domain.IngestEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeIngest(ctx context.Context, handler func(ctx context.Context, event *domain.IngestEvent) error) error
}

// CacheService provides read-through caching for aggregate results.
// Interpolation results are never cached; they are cheaper to recompute
// than to fetch.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ObjectStore reads raw dataset files from a landing-zone bucket.
type ObjectStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}
