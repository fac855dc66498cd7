package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type CreateReservationInput struct {
	Actor domain.Actor

	// ClientID is only read on the admin path; clients book for themselves.
	ClientID uint

	BarberID    uint
	ServiceID   uint
	ScheduledAt time.Time

	Comment string

	// admin only
	PrivateNote string
	Status      string
}

// ======================================================
// USE CASE
// ======================================================

type CreateReservation struct {
	repo   domain.Repository
	notify notify.Emitter
	now    func() time.Time
}

func NewCreateReservation(
	repo domain.Repository,
	emitter notify.Emitter,
) *CreateReservation {
	return &CreateReservation{
		repo:   repo,
		notify: emitter,
		now:    time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateReservation) Execute(
	ctx context.Context,
	in CreateReservationInput,
) (*models.Reservation, error) {

	now := uc.now()

	clientID := in.ClientID
	status := domain.InitialStatus()
	privateNote := ""

	if in.Actor.IsAdmin() {
		privateNote = in.PrivateNote
		if in.Status != "" {
			st, err := domain.ParseStatus(in.Status)
			if err != nil {
				return nil, err
			}
			if !st.IsUpcoming() {
				return nil, domain.ErrInvalidInitialStatus
			}
			status = st
		}
	} else {
		clientID = in.Actor.ID
	}

	// --------------------------------------------------
	// Data futura
	// --------------------------------------------------
	at := domain.NormalizeTime(in.ScheduledAt)
	if !at.After(now) {
		return nil, domain.ErrInPast
	}

	var ap *models.Reservation

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// Serviço / barbeiro / cliente
		// --------------------------------------------------
		service, err := activeService(ctx, tx, in.ServiceID)
		if err != nil {
			return err
		}

		if _, err := activeBarber(ctx, tx, in.BarberID); err != nil {
			return err
		}

		if _, err := tx.GetClient(ctx, clientID); err != nil {
			return mapNotFound(err, domain.ErrClientNotFound)
		}

		// --------------------------------------------------
		// Conflitos
		// --------------------------------------------------
		if err := assertSlotFree(ctx, tx, in.BarberID, clientID, at, 0); err != nil {
			return err
		}

		// --------------------------------------------------
		// Criação
		// --------------------------------------------------
		ap = &models.Reservation{
			ClientID:    clientID,
			BarberID:    in.BarberID,
			ServiceID:   service.ID,
			ScheduledAt: at,
			DurationMin: service.DurationMin,
			Status:      string(status),
			Comment:     in.Comment,
			PrivateNote: privateNote,
		}

		return mapWriteErr(tx.CreateReservation(ctx, ap))
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCreated.WithLabelValues(string(in.Actor.Kind)).Inc()

	// --------------------------------------------------
	// Efeitos pós-commit
	// --------------------------------------------------
	syncNextAppointment(ctx, uc.repo, clientID, now)

	if full, err := uc.repo.GetReservation(ctx, ap.ID); err == nil {
		ap = full
	}
	emit(ctx, uc.notify, eventFor(ap, notify.TypeNewBooking, "Nova reserva: "+describe(ap)))

	return ap, nil
}
