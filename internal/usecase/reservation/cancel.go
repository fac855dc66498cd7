package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// CancelReservation is the soft cancel: the row stays, the slot is freed.
type CancelReservation struct {
	repo   domain.Repository
	notify notify.Emitter
	now    func() time.Time
}

func NewCancelReservation(
	repo domain.Repository,
	emitter notify.Emitter,
) *CancelReservation {
	return &CancelReservation{
		repo:   repo,
		notify: emitter,
		now:    time.Now,
	}
}

func (uc *CancelReservation) Execute(
	ctx context.Context,
	actor domain.Actor,
	id uint,
) (*models.Reservation, error) {

	now := uc.now()

	var (
		ap     *models.Reservation
		before completionState
	)

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		before = completionOf(ap)

		if err := domain.AuthorizeClient(ap, actor, now, domain.ErrCancelWindowExpired); err != nil {
			return err
		}

		from := ap.Status
		if err := domain.Cancel(ap, now.UTC()); err != nil {
			return err
		}

		rec := domain.NewRecorder(actor.Kind, now.UTC())
		rec.Record(domain.FieldStatus, from, ap.Status)
		rec.Append(ap)

		return tx.SaveReservation(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCancelled.WithLabelValues(string(actor.Kind)).Inc()

	syncCompletion(ctx, uc.repo, ap.ClientID, before, completionOf(ap))
	syncNextAppointment(ctx, uc.repo, ap.ClientID, now)

	emit(ctx, uc.notify, eventFor(ap, notify.TypeCancelled, "Reserva cancelada: "+describe(ap)))

	return ap, nil
}
