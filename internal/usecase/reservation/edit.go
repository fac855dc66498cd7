package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

type EditReservationInput struct {
	ID      uint
	Actor   domain.Actor
	Changes domain.Changes
}

type EditReservation struct {
	repo   domain.Repository
	notify notify.Emitter
	now    func() time.Time
}

func NewEditReservation(
	repo domain.Repository,
	emitter notify.Emitter,
) *EditReservation {
	return &EditReservation{
		repo:   repo,
		notify: emitter,
		now:    time.Now,
	}
}

func (uc *EditReservation) Execute(
	ctx context.Context,
	in EditReservationInput,
) (*models.Reservation, error) {

	ch := in.Changes
	if ch.IsEmpty() {
		return nil, domain.ErrNoChanges
	}

	if !in.Actor.IsAdmin() && (ch.Status != nil || ch.PrivateNote != nil) {
		return nil, domain.ErrFieldNotEditable
	}

	now := uc.now()
	rec := domain.NewRecorder(in.Actor.Kind, now.UTC())

	var (
		ap     *models.Reservation
		before completionState
	)

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = loadReservation(ctx, tx, in.ID)
		if err != nil {
			return err
		}
		before = completionOf(ap)

		// --------------------------------------------------
		// Autorização (cliente)
		// --------------------------------------------------
		if !in.Actor.IsAdmin() {
			if ap.ClientID != in.Actor.ID {
				return domain.ErrForbidden
			}
			if domain.Status(ap.Status) == domain.StatusCancelled {
				return domain.ErrNotEditable
			}
			if !domain.WithinClientWindow(ap.ScheduledAt, now) {
				return domain.ErrEditWindowExpired
			}
		}

		// --------------------------------------------------
		// Só estado
		// --------------------------------------------------
		if ch.StatusOnly() {
			return applyStatusChange(ctx, tx, ap, *ch.Status, now, rec)
		}

		wasActive := domain.Status(ap.Status).IsActive()
		prevBarber, prevAt := ap.BarberID, ap.ScheduledAt

		// --------------------------------------------------
		// Barbeiro / serviço / horário
		// --------------------------------------------------
		if ch.BarberID != nil && *ch.BarberID != ap.BarberID {
			b, err := activeBarber(ctx, tx, *ch.BarberID)
			if err != nil {
				return err
			}
			rec.RecordID(domain.FieldBarber, ap.BarberID, b.ID)
			ap.BarberID = b.ID
			ap.Barber = *b
		}

		if ch.ServiceID != nil && *ch.ServiceID != ap.ServiceID {
			s, err := activeService(ctx, tx, *ch.ServiceID)
			if err != nil {
				return err
			}
			rec.RecordID(domain.FieldService, ap.ServiceID, s.ID)
			ap.ServiceID = s.ID
			ap.Service = *s
			ap.DurationMin = s.DurationMin
		}

		if ch.ScheduledAt != nil {
			at := domain.NormalizeTime(*ch.ScheduledAt)
			if !at.Equal(ap.ScheduledAt) {
				if !at.After(now) {
					return domain.ErrInPast
				}
				rec.RecordTime(domain.FieldScheduledAt, ap.ScheduledAt, at)
				ap.ScheduledAt = at
			}
		}

		// --------------------------------------------------
		// Estado (admin)
		// --------------------------------------------------
		if ch.Status != nil {
			to, err := domain.ParseStatus(*ch.Status)
			if err != nil {
				return err
			}
			from := ap.Status
			changed, err := domain.ApplyStatus(ap, to, now.UTC())
			if err != nil {
				return err
			}
			if changed {
				rec.Record(domain.FieldStatus, from, ap.Status)
			}
		}

		// --------------------------------------------------
		// Notas
		// --------------------------------------------------
		if ch.Comment != nil {
			rec.Record(domain.FieldComment, ap.Comment, *ch.Comment)
			ap.Comment = *ch.Comment
		}
		if ch.PrivateNote != nil {
			rec.Record(domain.FieldPrivateNote, ap.PrivateNote, *ch.PrivateNote)
			ap.PrivateNote = *ch.PrivateNote
		}

		if len(rec.Entries()) == 0 {
			return nil
		}

		// --------------------------------------------------
		// Conflitos (excluindo a própria reserva)
		// --------------------------------------------------
		isActive := domain.Status(ap.Status).IsActive()
		moved := ap.BarberID != prevBarber || !ap.ScheduledAt.Equal(prevAt)
		if isActive && (moved || !wasActive) {
			if err := assertSlotFree(ctx, tx, ap.BarberID, ap.ClientID, ap.ScheduledAt, ap.ID); err != nil {
				return err
			}
		}

		rec.Append(ap)
		return mapWriteErr(tx.SaveReservation(ctx, ap))
	})
	if err != nil {
		return nil, err
	}

	if len(rec.Entries()) == 0 {
		return ap, nil
	}

	// --------------------------------------------------
	// Efeitos pós-commit
	// --------------------------------------------------
	syncCompletion(ctx, uc.repo, ap.ClientID, before, completionOf(ap))
	syncNextAppointment(ctx, uc.repo, ap.ClientID, now)

	if typ, msg, ok := editNotification(ap, rec); ok {
		emit(ctx, uc.notify, eventFor(ap, typ, msg))
	}

	return ap, nil
}

// editNotification picks the event for a committed edit. Private-note
// changes alone are not client visible.
func editNotification(ap *models.Reservation, rec *domain.Recorder) (string, string, bool) {
	fields := rec.Fields()
	if len(fields) == 1 && fields[0] == domain.FieldPrivateNote {
		return "", "", false
	}

	if rec.Has(domain.FieldStatus) && domain.Status(ap.Status) == domain.StatusCancelled {
		return notify.TypeCancelled, "Reserva cancelada: " + describe(ap), true
	}
	if rec.NotesOnly() {
		return notify.TypeCommentEdited, "Comentário alterado: " + describe(ap), true
	}
	if len(fields) == 1 && fields[0] == domain.FieldStatus {
		return notify.TypeStatusChanged, "Estado alterado para " + ap.Status + ": " + describe(ap), true
	}
	return notify.TypeEdited, "Reserva alterada: " + describe(ap), true
}
