package api

import (
	"context"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

// TodoAggregator produces the joined todo view.
type TodoAggregator interface {
	Produce(ctx context.Context) domain.Envelope
}

// CategoryService lists and creates categories.
type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name string) (domain.Category, error)
}

// Deduper prevents replays of the same write request.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove deletes a previously added key, used when the write fails.
	Remove(ctx context.Context, scope, key string) error
}

// Probe checks one dependency for the services health endpoint.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}
