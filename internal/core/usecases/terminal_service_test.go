package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
)

func TestTerminalService_GetByID(t *testing.T) {
	repo := &mockTerminalRepo{terminals: map[string]*domain.Terminal{"T1": {ID: "T1", Name: "Paris"}}}
	svc := usecases.NewTerminalService(repo, &mockBookingIndex{})

	got, err := svc.GetByID(context.Background(), "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Paris" {
		t.Errorf("expected Paris, got %s", got.Name)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTerminalService_Bookings(t *testing.T) {
	repo := &mockTerminalRepo{terminals: map[string]*domain.Terminal{"T1": {ID: "T1"}}}
	idx := &mockBookingIndex{intervals: []domain.BookingInterval{
		{TerminalID: "T1", Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z"), Status: domain.BookingAccepted},
		{TerminalID: "T1", Start: at("2024-01-02T10:00:00Z"), End: at("2024-01-02T12:00:00Z"), Status: domain.BookingPending},
		{TerminalID: "T1", Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z"), Status: domain.BookingCancelled},
		{TerminalID: "T2", Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z"), Status: domain.BookingAccepted},
	}}
	svc := usecases.NewTerminalService(repo, idx)

	all, err := svc.Bookings(context.Background(), "T1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 blocking bookings, got %d", len(all))
	}

	window := &domain.TimeWindow{Start: at("2024-01-01T11:00:00Z"), End: at("2024-01-01T13:00:00Z")}
	inWindow, _ := svc.Bookings(context.Background(), "T1", window)
	if len(inWindow) != 1 || inWindow[0].Status != domain.BookingAccepted {
		t.Errorf("expected the accepted booking only, got %+v", inWindow)
	}

	if _, err := svc.Bookings(context.Background(), "T2", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown terminal, got %v", err)
	}
}

func TestTerminalService_BookingsFailure(t *testing.T) {
	repo := &mockTerminalRepo{terminals: map[string]*domain.Terminal{"T1": {ID: "T1"}}}
	svc := usecases.NewTerminalService(repo, &mockBookingIndex{err: errors.New("timeout")})

	if _, err := svc.Bookings(context.Background(), "T1", nil); !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
	}
}
