package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ReservationGormRepository struct {
	db *gorm.DB
}

func NewReservationGormRepository(db *gorm.DB) *ReservationGormRepository {
	return &ReservationGormRepository{db: db}
}

func (r *ReservationGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ReservationGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *ReservationGormRepository) GetBarber(
	ctx context.Context,
	id uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).First(&barber, id).Error; err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *ReservationGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *ReservationGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ReservationGormRepository) NextUpcomingAt(
	ctx context.Context,
	clientID uint,
	after time.Time,
) (*time.Time, error) {

	var ap models.Reservation
	err := r.db.WithContext(ctx).
		Select("scheduled_at").
		Where(
			"client_id = ? AND status IN ? AND scheduled_at > ?",
			clientID,
			domain.UpcomingStatuses(),
			after.UTC(),
		).
		Order("scheduled_at ASC").
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	at := ap.ScheduledAt.UTC()
	return &at, nil
}

func (r *ReservationGormRepository) SetNextAppointment(
	ctx context.Context,
	clientID uint,
	at *time.Time,
) error {

	var value any
	if at != nil {
		value = at.UTC()
	}

	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("next_appointment_date", value).Error
}

func (r *ReservationGormRepository) ApplyCompletion(
	ctx context.Context,
	clientID uint,
	at time.Time,
) error {

	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]any{
			"last_appointment_date": at.UTC(),
			"completed_count":       gorm.Expr("completed_count + 1"),
		}).Error
}

func (r *ReservationGormRepository) RevertCompletion(
	ctx context.Context,
	clientID uint,
	at time.Time,
) error {

	db := r.db.WithContext(ctx)

	if err := db.
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("completed_count", gorm.Expr(
			"CASE WHEN completed_count > 0 THEN completed_count - 1 ELSE 0 END",
		)).Error; err != nil {
		return err
	}

	// only clear when no newer completion replaced it
	return db.
		Model(&models.Client{}).
		Where("id = ? AND last_appointment_date = ?", clientID, at.UTC()).
		Update("last_appointment_date", nil).Error
}

// --------------------------------------------------
// Reservation (create / conflict)
// --------------------------------------------------

func (r *ReservationGormRepository) CreateReservation(
	ctx context.Context,
	ap *models.Reservation,
) error {
	return r.db.WithContext(ctx).Omit("Client", "Barber", "Service").Create(ap).Error
}

func (r *ReservationGormRepository) FindActiveAtSlot(
	ctx context.Context,
	barberID uint,
	at time.Time,
	excludeID uint,
) (*models.Reservation, error) {

	q := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND scheduled_at = ? AND status <> ?",
			barberID,
			at.UTC(),
			string(domain.StatusCancelled),
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	return firstOrNil(q)
}

func (r *ReservationGormRepository) FindClientActiveAt(
	ctx context.Context,
	clientID uint,
	at time.Time,
	excludeID uint,
) (*models.Reservation, error) {

	q := r.db.WithContext(ctx).
		Preload("Barber").
		Where(
			"client_id = ? AND scheduled_at = ? AND status <> ?",
			clientID,
			at.UTC(),
			string(domain.StatusCancelled),
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	return firstOrNil(q)
}

// --------------------------------------------------
// Reservation (state change)
// --------------------------------------------------

func (r *ReservationGormRepository) GetReservation(
	ctx context.Context,
	id uint,
) (*models.Reservation, error) {

	var ap models.Reservation
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Barber").
		Preload("Service").
		First(&ap, id).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *ReservationGormRepository) SaveReservation(
	ctx context.Context,
	ap *models.Reservation,
) error {
	return r.db.WithContext(ctx).Omit("Client", "Barber", "Service").Save(ap).Error
}

func (r *ReservationGormRepository) DeleteReservation(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *ReservationGormRepository) ListReservations(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Reservation, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Reservation{})

	if f.BarberID != 0 {
		q = q.Where("barber_id = ?", f.BarberID)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("scheduled_at < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var apps []models.Reservation
	if err := q.
		Preload("Client").
		Preload("Barber").
		Preload("Service").
		Order("scheduled_at DESC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *ReservationGormRepository) ListActiveForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Reservation, error) {

	var apps []models.Reservation
	if err := r.db.WithContext(ctx).
		Select("id", "scheduled_at", "duration_min", "status").
		Where(
			"barber_id = ? AND status <> ? AND scheduled_at >= ? AND scheduled_at < ?",
			barberID,
			string(domain.StatusCancelled),
			start.UTC(),
			end.UTC(),
		).
		Order("scheduled_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *ReservationGormRepository) ListUnavailability(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Unavailability, error) {

	var out []models.Unavailability
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND starts_at < ?", barberID, end.UTC()).
		Where(
			"ends_at > ? OR (recurrence <> '' AND (recurrence_until IS NULL OR recurrence_until >= ?))",
			start.UTC(),
			start.UTC(),
		).
		Order("starts_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

func firstOrNil(q *gorm.DB) (*models.Reservation, error) {
	var ap models.Reservation
	err := q.First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

// Compile-time check
var _ domain.Repository = (*ReservationGormRepository)(nil)
