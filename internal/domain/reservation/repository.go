package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ListFilter struct {
	BarberID uint
	ClientID uint
	Status   string
	From     *time.Time
	To       *time.Time

	Limit  int
	Offset int
}

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// -------- Catalog --------
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)

	// -------- Client --------
	GetClient(ctx context.Context, id uint) (*models.Client, error)

	NextUpcomingAt(ctx context.Context, clientID uint, after time.Time) (*time.Time, error)

	SetNextAppointment(ctx context.Context, clientID uint, at *time.Time) error

	ApplyCompletion(ctx context.Context, clientID uint, at time.Time) error

	RevertCompletion(ctx context.Context, clientID uint, at time.Time) error

	// -------- Reservation (create / conflict) --------
	CreateReservation(ctx context.Context, ap *models.Reservation) error

	// FindActiveAtSlot returns nil, nil when the barber is free at that instant.
	FindActiveAtSlot(ctx context.Context, barberID uint, at time.Time, excludeID uint) (*models.Reservation, error)

	// FindClientActiveAt preloads Barber so callers can name it.
	FindClientActiveAt(ctx context.Context, clientID uint, at time.Time, excludeID uint) (*models.Reservation, error)

	// -------- Reservation (state change) --------
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)

	SaveReservation(ctx context.Context, ap *models.Reservation) error

	DeleteReservation(ctx context.Context, id uint) error

	// -------- Queries --------
	ListReservations(ctx context.Context, f ListFilter) ([]models.Reservation, int64, error)

	ListActiveForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Reservation, error)

	ListUnavailability(ctx context.Context, barberID uint, start, end time.Time) ([]models.Unavailability, error)
}
