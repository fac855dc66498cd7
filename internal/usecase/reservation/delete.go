package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// DeleteReservation removes the row. Admin only.
type DeleteReservation struct {
	repo   domain.Repository
	notify notify.Emitter
	now    func() time.Time
}

func NewDeleteReservation(
	repo domain.Repository,
	emitter notify.Emitter,
) *DeleteReservation {
	return &DeleteReservation{
		repo:   repo,
		notify: emitter,
		now:    time.Now,
	}
}

func (uc *DeleteReservation) Execute(
	ctx context.Context,
	actor domain.Actor,
	id uint,
) error {

	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	now := uc.now()

	var ap *models.Reservation

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		return tx.DeleteReservation(ctx, ap.ID)
	})
	if err != nil {
		return err
	}

	// gone rows count as not completed
	syncCompletion(ctx, uc.repo, ap.ClientID, completionOf(ap), completionState{at: ap.ScheduledAt})
	syncNextAppointment(ctx, uc.repo, ap.ClientID, now)

	emit(ctx, uc.notify, eventFor(ap, notify.TypeDeleted, "Reserva eliminada: "+describe(ap)))

	return nil
}
