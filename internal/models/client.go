package models

import "time"

// Cliente do site público. Credencial por password, OAuth, ou ambos.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string  `gorm:"size:100;not null" json:"name"`
	Email string  `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone string  `gorm:"size:20;index" json:"phone"`
	NIF   *string `gorm:"size:20" json:"nif"`

	PasswordHash *string `gorm:"size:255" json:"-"`
	GoogleID     *string `gorm:"size:100;uniqueIndex" json:"-"`
	FacebookID   *string `gorm:"size:100;uniqueIndex" json:"-"`

	EmailVerified bool `gorm:"default:false" json:"email_verified"`

	NextAppointmentDate *time.Time `json:"next_appointment_date"`
	LastAppointmentDate *time.Time `json:"last_appointment_date"`
	CompletedCount      int        `gorm:"not null;default:0" json:"completed_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) HasPassword() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// LinkedProviders lists the OAuth providers attached to the account.
func (c *Client) LinkedProviders() []string {
	out := []string{}
	if c.GoogleID != nil {
		out = append(out, "google")
	}
	if c.FacebookID != nil {
		out = append(out, "facebook")
	}
	return out
}
