package models

import (
	"time"

	"gorm.io/datatypes"
)

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client"`

	BarberID uint   `gorm:"not null;index" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"barber"`

	ServiceID uint    `gorm:"not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`
	DurationMin int       `gorm:"not null" json:"duration_min"`

	Status string `gorm:"size:20;not null;default:'confirmed';index" json:"status"`

	Comment     string `gorm:"type:text" json:"comment"`
	PrivateNote string `gorm:"type:text" json:"private_note,omitempty"`

	EditHistory datatypes.JSONSlice[EditEntry] `json:"edit_history"`

	InvoiceID     *string `gorm:"size:50" json:"invoice_id"`
	InvoiceNumber *string `gorm:"size:50" json:"invoice_number"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditEntry is one changed field of a reservation mutation.
type EditEntry struct {
	Field  string    `json:"field"`
	Before string    `json:"before"`
	After  string    `json:"after"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
}

// EndsAt uses the duration captured when the reservation was booked.
func (r *Reservation) EndsAt() time.Time {
	return r.ScheduledAt.Add(time.Duration(r.DurationMin) * time.Minute)
}
