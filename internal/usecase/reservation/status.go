package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// ChangeReservationStatus is the admin status flip, including completion
// and its reversal.
type ChangeReservationStatus struct {
	repo   domain.Repository
	notify notify.Emitter
	now    func() time.Time
}

func NewChangeReservationStatus(
	repo domain.Repository,
	emitter notify.Emitter,
) *ChangeReservationStatus {
	return &ChangeReservationStatus{
		repo:   repo,
		notify: emitter,
		now:    time.Now,
	}
}

func (uc *ChangeReservationStatus) Execute(
	ctx context.Context,
	actor domain.Actor,
	id uint,
	status string,
) (*models.Reservation, error) {

	if !actor.IsAdmin() {
		return nil, domain.ErrFieldNotEditable
	}

	now := uc.now()
	rec := domain.NewRecorder(actor.Kind, now.UTC())

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

		return applyStatusChange(ctx, tx, ap, status, now, rec)
	})
	if err != nil {
		return nil, err
	}

	if len(rec.Entries()) == 0 {
		return ap, nil
	}

	syncCompletion(ctx, uc.repo, ap.ClientID, before, completionOf(ap))
	syncNextAppointment(ctx, uc.repo, ap.ClientID, now)

	if typ, msg, ok := editNotification(ap, rec); ok {
		emit(ctx, uc.notify, eventFor(ap, typ, msg))
	}

	return ap, nil
}

// applyStatusChange runs inside the caller's transaction. Setting the
// current status again records nothing.
func applyStatusChange(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Reservation,
	status string,
	now time.Time,
	rec *domain.Recorder,
) error {

	to, err := domain.ParseStatus(status)
	if err != nil {
		return err
	}

	from := domain.Status(ap.Status)
	changed, err := domain.ApplyStatus(ap, to, now.UTC())
	if err != nil || !changed {
		return err
	}

	// reactivation takes the slot back
	if !from.IsActive() && to.IsActive() {
		if err := assertSlotFree(ctx, tx, ap.BarberID, ap.ClientID, ap.ScheduledAt, ap.ID); err != nil {
			return err
		}
	}

	rec.Record(domain.FieldStatus, string(from), string(to))
	rec.Append(ap)

	return mapWriteErr(tx.SaveReservation(ctx, ap))
}
