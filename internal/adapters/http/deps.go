package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ebcharge/internal/core/usecases"
)

// Pinger is a backing service the readiness check can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search    *usecases.TerminalSearchService
	Terminals *usecases.TerminalService
	NATS      *nats.Conn
	DB        Pinger
	Cache     Pinger

	// MaxRadiusKm caps the search radius accepted from clients; 0 disables the cap.
	MaxRadiusKm float64
	// RateLimit is requests per minute per client IP; 0 uses 120.
	RateLimit int
	// RequestTimeout bounds each REST call; 0 uses 15s.
	RequestTimeout time.Duration
}
