package reservation

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ClientCutoff is the minimum lead time a client needs to edit or cancel.
const ClientCutoff = 5 * time.Hour

type ActorKind string

const (
	ActorClient ActorKind = "client"
	ActorAdmin  ActorKind = "admin"
)

type Actor struct {
	Kind ActorKind
	ID   uint
}

func Client(id uint) Actor { return Actor{Kind: ActorClient, ID: id} }

func Admin(id uint) Actor { return Actor{Kind: ActorAdmin, ID: id} }

func (a Actor) IsAdmin() bool { return a.Kind == ActorAdmin }

// ===============================
// Domain Rules
// ===============================

// NormalizeTime stores slots in UTC at second precision so equality checks
// are stable across drivers.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func WithinClientWindow(scheduledAt, now time.Time) bool {
	return scheduledAt.Sub(now) >= ClientCutoff
}

// AuthorizeClient checks ownership and the cutoff on the stored time.
// expired is returned when the cutoff has passed.
func AuthorizeClient(ap *models.Reservation, actor Actor, now time.Time, expired error) error {
	if actor.IsAdmin() {
		return nil
	}
	if ap.ClientID != actor.ID {
		return ErrForbidden
	}
	if !WithinClientWindow(ap.ScheduledAt, now) {
		return expired
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

// ApplyStatus mutates ap to the target status and stamps the matching
// timestamp. It returns false when nothing changed.
func ApplyStatus(ap *models.Reservation, to Status, now time.Time) (bool, error) {
	from := Status(ap.Status)
	if from == to {
		return false, nil
	}
	if err := CanTransition(from, to); err != nil {
		return false, err
	}

	ap.Status = string(to)
	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	if from == StatusCancelled {
		ap.CancelledAt = nil
	}
	if from == StatusCompleted {
		ap.CompletedAt = nil
	}
	return true, nil
}

func Cancel(ap *models.Reservation, now time.Time) error {
	if Status(ap.Status) == StatusCancelled {
		return ErrAlreadyCancelled
	}
	_, err := ApplyStatus(ap, StatusCancelled, now)
	return err
}
