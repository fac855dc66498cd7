package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type PersonRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email,omitempty"`
	Phone string `json:"telefone,omitempty"`
}

type ServiceRef struct {
	ID          uint    `json:"id"`
	Name        string  `json:"nome"`
	DurationMin int     `json:"duracao_min"`
	Price       float64 `json:"preco"`
}

type ReservationDTO struct {
	ID          uint      `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Date        string    `json:"data"`
	Time        string    `json:"hora"`
	DurationMin int       `json:"duracao_min"`
	Status      string    `json:"estado"`
	Comment     string    `json:"comentario"`
	PrivateNote string    `json:"nota_privada,omitempty"`

	Client  PersonRef  `json:"cliente"`
	Barber  PersonRef  `json:"barbeiro"`
	Service ServiceRef `json:"servico"`

	InvoiceNumber *string            `json:"numero_fatura,omitempty"`
	History       []models.EditEntry `json:"historico,omitempty"`

	CancelledAt *time.Time `json:"cancelada_em,omitempty"`
	CompletedAt *time.Time `json:"concluida_em,omitempty"`
	CreatedAt   time.Time  `json:"criada_em"`
}

// NewReservation renders a reservation in the business timezone. The
// private note and edit history are only filled for admins.
func NewReservation(ap *models.Reservation, admin bool) ReservationDTO {
	local := ap.ScheduledAt.In(timezone.Default())

	out := ReservationDTO{
		ID:          ap.ID,
		ScheduledAt: ap.ScheduledAt.UTC(),
		Date:        local.Format("2006-01-02"),
		Time:        local.Format("15:04"),
		DurationMin: ap.DurationMin,
		Status:      ap.Status,
		Comment:     ap.Comment,
		Client: PersonRef{
			ID:    ap.ClientID,
			Name:  ap.Client.Name,
			Email: ap.Client.Email,
			Phone: ap.Client.Phone,
		},
		Barber: PersonRef{ID: ap.BarberID, Name: ap.Barber.Name},
		Service: ServiceRef{
			ID:          ap.ServiceID,
			Name:        ap.Service.Name,
			DurationMin: ap.Service.DurationMin,
			Price:       ap.Service.Price,
		},
		InvoiceNumber: ap.InvoiceNumber,
		CancelledAt:   ap.CancelledAt,
		CompletedAt:   ap.CompletedAt,
		CreatedAt:     ap.CreatedAt,
	}

	if admin {
		out.PrivateNote = ap.PrivateNote
		out.History = ap.EditHistory
	}

	return out
}

func NewReservations(in []models.Reservation, admin bool) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(in))
	for i := range in {
		out = append(out, NewReservation(&in[i], admin))
	}
	return out
}

// ClientProfile is the "me" view, including the denormalized scheduling
// fields.
type ClientProfile struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"nome"`
	Email               string     `json:"email"`
	Phone               string     `json:"telefone"`
	NIF                 *string    `json:"nif"`
	EmailVerified       bool       `json:"email_verificado"`
	HasPassword         bool       `json:"tem_password"`
	Providers           []string   `json:"contas_ligadas"`
	NextAppointmentDate *time.Time `json:"proxima_marcacao"`
	LastAppointmentDate *time.Time `json:"ultima_marcacao"`
	CompletedCount      int        `json:"marcacoes_concluidas"`
}

func NewClientProfile(c *models.Client) ClientProfile {
	return ClientProfile{
		ID:                  c.ID,
		Name:                c.Name,
		Email:               c.Email,
		Phone:               c.Phone,
		NIF:                 c.NIF,
		EmailVerified:       c.EmailVerified,
		HasPassword:         c.HasPassword(),
		Providers:           c.LinkedProviders(),
		NextAppointmentDate: c.NextAppointmentDate,
		LastAppointmentDate: c.LastAppointmentDate,
		CompletedCount:      c.CompletedCount,
	}
}
