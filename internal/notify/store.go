package notify

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Store persists notifications for the admin inbox.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "db" }

func (s *Store) Handle(ctx context.Context, ev Event) error {
	n := models.Notification{
		Type:          ev.Type,
		Message:       ev.Message,
		ReservationID: ev.ReservationID,
		ClientName:    ev.ClientName,
		BarberID:      ev.BarberID,
	}
	return s.db.WithContext(ctx).Create(&n).Error
}

func (s *Store) List(
	ctx context.Context,
	unreadOnly bool,
	limit, offset int,
) ([]models.Notification, int64, error) {

	q := s.db.WithContext(ctx).Model(&models.Notification{})
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Notification
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (s *Store) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read = ?", false).
		Count(&n).Error
	return n, err
}

// MarkRead returns gorm.ErrRecordNotFound for an unknown id.
func (s *Store) MarkRead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read = ?", false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

var _ Sink = (*Store)(nil)
