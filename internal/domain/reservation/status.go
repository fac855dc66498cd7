package reservation

import (
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// ===============================
// Reservation Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
	StatusCancelled,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", httperr.ErrValidation("invalid_status", "Estado inválido.")
}

// IsActive: every status except cancelled holds the slot.
func (s Status) IsActive() bool {
	return s != StatusCancelled
}

// IsUpcoming reports whether the reservation still counts as a future visit
// for the client's next-appointment pointer.
func (s Status) IsUpcoming() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses lists the statuses that take part in slot conflict checks.
func ActiveStatuses() []string {
	out := make([]string, 0, len(allStatuses)-1)
	for _, st := range allStatuses {
		if st.IsActive() {
			out = append(out, string(st))
		}
	}
	return out
}

func UpcomingStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed)}
}

// CanTransition applies the status machine:
//
//	pending   -> confirmed, no_show, completed, cancelled
//	confirmed -> no_show, completed, cancelled
//	completed, no_show, cancelled -> any
//
// Moving to the current status is not a transition and is rejected here;
// callers treat it as a no-op before asking.
func CanTransition(from, to Status) error {
	if from == to {
		return httperr.ErrValidation("status_unchanged", "O estado é o mesmo.")
	}

	switch from {
	case StatusPending, StatusConfirmed:
		if to == StatusPending {
			return httperr.ErrValidation("invalid_transition", "Transição de estado inválida.")
		}
	}

	return nil
}

func InitialStatus() Status {
	return StatusConfirmed
}
