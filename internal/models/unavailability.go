package models

import "time"

type Unavailability struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarberID uint   `gorm:"not null;index" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`

	Kind   string `gorm:"size:20;not null" json:"kind"`
	Reason string `gorm:"size:255" json:"reason"`

	Recurrence      string     `gorm:"size:20" json:"recurrence"`
	RecurrenceUntil *time.Time `json:"recurrence_until"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
