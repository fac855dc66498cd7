package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// LOOKUPS
// ======================================================

func mapNotFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func loadReservation(ctx context.Context, repo domain.Repository, id uint) (*models.Reservation, error) {
	ap, err := repo.GetReservation(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrNotFound)
	}
	return ap, nil
}

func activeBarber(ctx context.Context, repo domain.Repository, id uint) (*models.Barber, error) {
	b, err := repo.GetBarber(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrBarberNotFound)
	}
	if !b.Active {
		return nil, domain.ErrBarberNotFound
	}
	return b, nil
}

func activeService(ctx context.Context, repo domain.Repository, id uint) (*models.Service, error) {
	s, err := repo.GetService(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrServiceNotFound)
	}
	if !s.Active {
		return nil, domain.ErrServiceNotFound
	}
	return s, nil
}

// assertSlotFree checks both single-active-reservation rules for a slot.
// excludeID skips the reservation being edited.
func assertSlotFree(
	ctx context.Context,
	repo domain.Repository,
	barberID, clientID uint,
	at time.Time,
	excludeID uint,
) error {

	taken, err := repo.FindActiveAtSlot(ctx, barberID, at, excludeID)
	if err != nil {
		return err
	}
	if taken != nil {
		metrics.ReservationConflicts.WithLabelValues("barber_slot").Inc()
		return domain.ErrSlotConflict
	}

	own, err := repo.FindClientActiveAt(ctx, clientID, at, excludeID)
	if err != nil {
		return err
	}
	if own != nil {
		metrics.ReservationConflicts.WithLabelValues("client_double_booking").Inc()
		return domain.ErrClientDoubleBooking(own.Barber.Name)
	}

	return nil
}

// mapWriteErr turns a lost race on the partial unique indexes into the
// same conflict the pre-check reports.
func mapWriteErr(err error) error {
	if err != nil && httperr.IsUniqueViolation(err) {
		metrics.ReservationConflicts.WithLabelValues("unique_index").Inc()
		return domain.ErrSlotConflict
	}
	return err
}

// ======================================================
// CLIENT POINTERS (post-commit, best-effort)
// ======================================================

func syncNextAppointment(ctx context.Context, repo domain.Repository, clientID uint, now time.Time) {
	next, err := repo.NextUpcomingAt(ctx, clientID, now)
	if err == nil {
		err = repo.SetNextAppointment(ctx, clientID, next)
	}
	if err != nil {
		slog.WarnContext(ctx, "next appointment recompute failed",
			"client_id", clientID,
			"error", err,
		)
	}
}

type completionState struct {
	completed bool
	at        time.Time
}

func completionOf(ap *models.Reservation) completionState {
	return completionState{
		completed: domain.Status(ap.Status) == domain.StatusCompleted,
		at:        ap.ScheduledAt,
	}
}

// syncCompletion moves last_appointment_date / completed_count from the
// before state to the after state.
func syncCompletion(
	ctx context.Context,
	repo domain.Repository,
	clientID uint,
	before, after completionState,
) {

	moved := !before.at.Equal(after.at)

	if before.completed && (!after.completed || moved) {
		if err := repo.RevertCompletion(ctx, clientID, before.at); err != nil {
			slog.WarnContext(ctx, "completion revert failed",
				"client_id", clientID,
				"error", err,
			)
		}
	}

	if after.completed && (!before.completed || moved) {
		if err := repo.ApplyCompletion(ctx, clientID, after.at); err != nil {
			slog.WarnContext(ctx, "completion apply failed",
				"client_id", clientID,
				"error", err,
			)
		}
	}
}

// ======================================================
// NOTIFICATIONS
// ======================================================

func emit(ctx context.Context, e notify.Emitter, ev notify.Event) {
	if e == nil {
		return
	}
	if err := e.Emit(ctx, ev); err != nil {
		slog.WarnContext(ctx, "notification not emitted",
			"type", ev.Type,
			"error", err,
		)
	}
}

func eventFor(ap *models.Reservation, typ, message string) notify.Event {
	id := ap.ID
	barberID := ap.BarberID
	name := ap.Client.Name

	return notify.Event{
		Type:          typ,
		Message:       message,
		ReservationID: &id,
		ClientName:    &name,
		BarberID:      &barberID,
		ClientEmail:   ap.Client.Email,
		BarberName:    ap.Barber.Name,
		ScheduledAt:   ap.ScheduledAt,
	}
}

func describe(ap *models.Reservation) string {
	return fmt.Sprintf("%s com %s em %s",
		ap.Client.Name,
		ap.Barber.Name,
		ap.ScheduledAt.In(timezone.Default()).Format("02/01/2006 15:04"),
	)
}
