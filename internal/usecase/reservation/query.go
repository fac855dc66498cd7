package reservation

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

var ErrInvalidDate = httperr.ErrValidation("invalid_date", "Data inválida, use o formato AAAA-MM-DD.")

// ======================================================
// GET / LIST
// ======================================================

type Queries struct {
	repo domain.Repository
}

func NewQueries(repo domain.Repository) *Queries {
	return &Queries{repo: repo}
}

// Get returns a reservation visible to actor. Clients only see their own,
// without the private note.
func (q *Queries) Get(
	ctx context.Context,
	actor domain.Actor,
	id uint,
) (*models.Reservation, error) {

	ap, err := loadReservation(ctx, q.repo, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if ap.ClientID != actor.ID {
			return nil, domain.ErrForbidden
		}
		ap.PrivateNote = ""
	}

	return ap, nil
}

// List scopes the filter to the caller. A client always lists their own.
func (q *Queries) List(
	ctx context.Context,
	actor domain.Actor,
	f domain.ListFilter,
) ([]models.Reservation, int64, error) {

	if !actor.IsAdmin() {
		f.ClientID = actor.ID
	}
	if f.Status != "" {
		if _, err := domain.ParseStatus(f.Status); err != nil {
			return nil, 0, err
		}
	}

	apps, total, err := q.repo.ListReservations(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	if !actor.IsAdmin() {
		for i := range apps {
			apps[i].PrivateNote = ""
		}
	}

	return apps, total, nil
}

// ======================================================
// OCCUPIED TIMES
// ======================================================

type Occupied struct {
	Date    string          `json:"date"`
	Busy    []domain.Window `json:"busy"`
	Blocked []domain.Window `json:"blocked"`
}

// Occupied lists the barber's taken reservation intervals and
// unavailability windows for one business-local day.
func (q *Queries) Occupied(
	ctx context.Context,
	barberID uint,
	date string,
) (*Occupied, error) {

	loc := timezone.Default()

	start, end, err := timezone.DayBounds(date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := activeBarber(ctx, q.repo, barberID); err != nil {
		return nil, err
	}

	apps, err := q.repo.ListActiveForPeriod(ctx, barberID, start, end)
	if err != nil {
		return nil, err
	}

	unav, err := q.repo.ListUnavailability(ctx, barberID, start, end)
	if err != nil {
		return nil, err
	}

	out := &Occupied{
		Date:    date,
		Busy:    make([]domain.Window, 0, len(apps)),
		Blocked: []domain.Window{},
	}

	for _, ap := range apps {
		out.Busy = append(out.Busy, domain.Window{
			Start: ap.ScheduledAt.In(loc),
			End:   ap.EndsAt().In(loc),
			Kind:  "reservation",
		})
	}

	for _, u := range unav {
		if w, ok := domain.ProjectWindow(u, start); ok {
			w.Start, w.End = w.Start.In(loc), w.End.In(loc)
			out.Blocked = append(out.Blocked, w)
		}
	}

	return out, nil
}
