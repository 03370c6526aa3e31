package ports

import (
	"context"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishOccupancy(ctx context.Context, event *domain.OccupancyEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeOccupancy(ctx context.Context, handler func(ctx context.Context, event *domain.OccupancyEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// OccupancyScheduler drives a booking's terminal occupancy over time.
type OccupancyScheduler interface {
	ScheduleBooking(ctx context.Context, booking *domain.Booking) error
	CancelBooking(ctx context.Context, bookingID string) error
}
