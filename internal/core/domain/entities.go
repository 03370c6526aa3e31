package domain

import (
	"time"
)

// TerminalStatus is the operating state of a charging terminal.
type TerminalStatus string

const (
	TerminalAvailable    TerminalStatus = "available"
	TerminalOccupied     TerminalStatus = "occupied"
	TerminalUnderRepair  TerminalStatus = "under_repair"
	TerminalOutOfService TerminalStatus = "out_of_service"
	TerminalBroken       TerminalStatus = "broken"
)

// Valid reports whether s is a known terminal status.
func (s TerminalStatus) Valid() bool {
	switch s {
	case TerminalAvailable, TerminalOccupied, TerminalUnderRepair, TerminalOutOfService, TerminalBroken:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRefused   BookingStatus = "refused"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
)

// Blocking reports whether a booking in this state reserves its slot.
// Refused, cancelled and expired bookings never block a terminal.
func (s BookingStatus) Blocking() bool {
	return s == BookingPending || s == BookingAccepted
}

// BlockingBookingStatuses lists the states that take part in conflict checks.
var BlockingBookingStatuses = []BookingStatus{BookingPending, BookingAccepted}

// Place is a physical location hosting one or more terminals.
type Place struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions,omitempty"`
	Location     GeoPoint  `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
}

// Terminal is a fixed charging point at a place.
type Terminal struct {
	ID        string         `json:"id"`
	PlaceID   string         `json:"place_id,omitempty"`
	Name      string         `json:"name"`
	Location  GeoPoint       `json:"location"`
	Occupied  bool           `json:"occupied"`
	Status    TerminalStatus `json:"status"`
	PowerKW   float64        `json:"power_kw"`
	Price     float64        `json:"price"` // per hour
	Standing  bool           `json:"standing"`
	Distance  *float64       `json:"distance_km,omitempty"` // computed field
	CreatedAt time.Time      `json:"created_at"`
}

// Option is a paid add-on that can be attached to a booking.
type Option struct {
	ID          string  `json:"id"`
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Car is a user's vehicle to charge.
type Car struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
}

// Booking reserves a terminal for a time slot.
type Booking struct {
	ID          string        `json:"id"`
	Number      string        `json:"number"`
	TerminalID  string        `json:"terminal_id"`
	UserID      string        `json:"user_id"`
	CarID       string        `json:"car_id,omitempty"`
	OptionID    *string       `json:"option_id,omitempty"`
	Status      BookingStatus `json:"status"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	TotalAmount float64       `json:"total_amount"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Interval projects the booking onto its reserved slot.
func (b Booking) Interval() BookingInterval {
	return BookingInterval{TerminalID: b.TerminalID, Start: b.Start, End: b.End, Status: b.Status}
}

// BookingInterval is the [Start, End) slot held by a booking on a terminal.
type BookingInterval struct {
	TerminalID string        `json:"terminal_id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Status     BookingStatus `json:"status"`
}

// OccupancyEvent announces a change of a terminal's occupied flag.
type OccupancyEvent struct {
	TerminalID string         `json:"terminal_id"`
	Occupied   bool           `json:"occupied"`
	Status     TerminalStatus `json:"status"`
	BookingID  string         `json:"booking_id,omitempty"`
	Time       time.Time      `json:"time"`
}
