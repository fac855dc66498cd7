package notify

import (
	"context"
	"time"
)

const (
	TypeNewBooking    = "new_booking"
	TypeCancelled     = "cancelled"
	TypeEdited        = "edited"
	TypeCommentEdited = "comment_edited"
	TypeDeleted       = "deleted"
	TypeStatusChanged = "status_changed"
)

type Event struct {
	Type    string
	Message string

	ReservationID *uint
	ClientName    *string
	BarberID      *uint

	// mail sink only
	ClientEmail string
	BarberName  string
	ScheduledAt time.Time
}

// Emitter is called after the primary write has committed. A returned error
// means the event was not accepted; callers log it and carry on.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Sink receives events from the dispatcher worker.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
