package usecases_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
)

func TestBookingScheduleService_ScheduleUpcoming(t *testing.T) {
	now := at("2024-01-01T08:00:00Z")
	repo := &mockBookingRepo{bookings: map[string]*domain.Booking{
		"B1": {ID: "B1", Status: domain.BookingAccepted, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z")},
		"B2": {ID: "B2", Status: domain.BookingPending, Start: at("2024-01-01T07:00:00Z"), End: at("2024-01-01T09:00:00Z")},
		"B3": {ID: "B3", Status: domain.BookingCancelled, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z")},
		"B4": {ID: "B4", Status: domain.BookingAccepted, Start: at("2024-01-01T06:00:00Z"), End: at("2024-01-01T08:00:00Z")},
	}}
	sched := &mockScheduler{}
	svc := usecases.NewBookingScheduleService(repo, sched)

	n, err := svc.ScheduleUpcoming(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 scheduled, got %d", n)
	}
	sort.Strings(sched.scheduled)
	if len(sched.scheduled) != 2 || sched.scheduled[0] != "B1" || sched.scheduled[1] != "B2" {
		t.Errorf("expected [B1 B2], got %v", sched.scheduled)
	}
}

func TestBookingScheduleService_PartialFailure(t *testing.T) {
	now := at("2024-01-01T08:00:00Z")
	repo := &mockBookingRepo{bookings: map[string]*domain.Booking{
		"B1": {ID: "B1", Status: domain.BookingAccepted, End: at("2024-01-01T12:00:00Z")},
		"B2": {ID: "B2", Status: domain.BookingAccepted, End: at("2024-01-01T12:00:00Z")},
	}}
	sched := &mockScheduler{failFor: map[string]bool{"B2": true}}
	svc := usecases.NewBookingScheduleService(repo, sched)

	n, err := svc.ScheduleUpcoming(context.Background(), now)
	if n != 1 {
		t.Errorf("expected 1 scheduled, got %d", n)
	}
	if err == nil {
		t.Error("expected joined error for B2")
	}
}

func TestBookingScheduleService_ListFailure(t *testing.T) {
	repo := &mockBookingRepo{listErr: errors.New("db down")}
	svc := usecases.NewBookingScheduleService(repo, &mockScheduler{})

	_, err := svc.ScheduleUpcoming(context.Background(), at("2024-01-01T08:00:00Z"))
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
	}
}

func TestBookingScheduleService_AcceptIfPending(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[string]*domain.Booking{
		"pending":   {ID: "pending", Status: domain.BookingPending},
		"cancelled": {ID: "cancelled", Status: domain.BookingCancelled},
	}}
	svc := usecases.NewBookingScheduleService(repo, &mockScheduler{})

	status, err := svc.AcceptIfPending(context.Background(), "pending")
	if err != nil || status != domain.BookingAccepted {
		t.Errorf("expected accepted, got %s, %v", status, err)
	}
	if repo.updated["pending"] != domain.BookingAccepted {
		t.Error("expected status update to be persisted")
	}

	status, err = svc.AcceptIfPending(context.Background(), "cancelled")
	if err != nil || status != domain.BookingCancelled {
		t.Errorf("expected cancelled to be kept, got %s, %v", status, err)
	}
	if _, touched := repo.updated["cancelled"]; touched {
		t.Error("cancelled booking must not be updated")
	}
}

func TestBookingScheduleService_Cancel(t *testing.T) {
	sched := &mockScheduler{}
	svc := usecases.NewBookingScheduleService(&mockBookingRepo{}, sched)

	if err := svc.Cancel(context.Background(), "B9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.cancelled) != 1 || sched.cancelled[0] != "B9" {
		t.Errorf("expected B9 cancelled, got %v", sched.cancelled)
	}
}

func TestBookingScheduleService_CancelReleased(t *testing.T) {
	now := at("2024-01-01T10:30:00Z")
	repo := &mockBookingRepo{released: []domain.Booking{
		{ID: "mid-slot", Status: domain.BookingCancelled, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T11:00:00Z")},
		{ID: "expired", Status: domain.BookingExpired, Start: at("2024-01-01T09:00:00Z"), End: at("2024-01-01T12:00:00Z")},
		{ID: "still-held", Status: domain.BookingAccepted, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T11:00:00Z")},
		{ID: "ended", Status: domain.BookingCancelled, Start: at("2024-01-01T09:30:00Z"), End: at("2024-01-01T10:30:00Z")},
		{ID: "not-started", Status: domain.BookingRefused, Start: at("2024-01-01T11:00:00Z"), End: at("2024-01-01T12:00:00Z")},
	}}
	sched := &mockScheduler{}
	svc := usecases.NewBookingScheduleService(repo, sched)

	n, err := svc.CancelReleased(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cancelled, got %d", n)
	}
	sort.Strings(sched.cancelled)
	if len(sched.cancelled) != 2 || sched.cancelled[0] != "expired" || sched.cancelled[1] != "mid-slot" {
		t.Errorf("expected [expired mid-slot], got %v", sched.cancelled)
	}
}

func TestBookingScheduleService_CancelReleasedPartialFailure(t *testing.T) {
	now := at("2024-01-01T10:30:00Z")
	repo := &mockBookingRepo{released: []domain.Booking{
		{ID: "B1", Status: domain.BookingCancelled, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T11:00:00Z")},
		{ID: "B2", Status: domain.BookingCancelled, Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T11:00:00Z")},
	}}
	sched := &mockScheduler{failFor: map[string]bool{"B2": true}}
	svc := usecases.NewBookingScheduleService(repo, sched)

	n, err := svc.CancelReleased(context.Background(), now)
	if n != 1 {
		t.Errorf("expected 1 cancelled, got %d", n)
	}
	if err == nil {
		t.Error("expected joined error for B2")
	}

	repo.listErr = errors.New("db down")
	if _, err := svc.CancelReleased(context.Background(), now); !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
	}
}
