package models

import "time"

type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Type    string `gorm:"size:30;not null;index" json:"type"`
	Message string `gorm:"type:text;not null" json:"message"`

	ReservationID *uint   `gorm:"index" json:"reservation_id"`
	ClientName    *string `gorm:"size:100" json:"client_name"`
	BarberID      *uint   `json:"barber_id"`

	Read bool `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
