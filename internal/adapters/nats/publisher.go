package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

const (
	// StreamName holds every terminal event.
	StreamName = "TERMINAL_EVENTS"

	// OccupancyWildcard matches the occupancy events of all terminals.
	OccupancyWildcard = "charging.terminal.>"
)

// OccupancySubject is the subject carrying a terminal's occupancy changes.
func OccupancySubject(terminalID string) string {
	return "charging.terminal." + terminalID + ".occupancy"
}

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// EnsureStream creates or updates the terminal events stream.
func EnsureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{OccupancyWildcard},
		Retention:  nats.LimitsPolicy,
		MaxAge:     24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	js nats.JetStreamContext
}

// NewPublisher enables JetStream on conn and makes sure the stream exists.
func NewPublisher(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		return nil, err
	}
	return &Publisher{js: js}, nil
}

// PublishOccupancy publishes an occupancy change. Each message carries a
// fresh id so JetStream drops client retries of the same publish.
func (p *Publisher) PublishOccupancy(ctx context.Context, event *domain.OccupancyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(OccupancySubject(event.TerminalID), data,
		nats.Context(ctx),
		nats.MsgId(uuid.NewString()),
	)
	return err
}
