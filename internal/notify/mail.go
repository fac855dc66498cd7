package notify

import (
	"context"
	"fmt"
	"time"
)

// Sender delivers one plain-text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailSink emails the client on bookings and cancellations.
type MailSink struct {
	sender Sender
	loc    *time.Location
}

func NewMailSink(sender Sender, loc *time.Location) *MailSink {
	if loc == nil {
		loc = time.UTC
	}
	return &MailSink{sender: sender, loc: loc}
}

func (m *MailSink) Name() string { return "mail" }

func (m *MailSink) Handle(ctx context.Context, ev Event) error {
	if ev.ClientEmail == "" {
		return nil
	}

	subject, body, ok := m.compose(ev)
	if !ok {
		return nil
	}
	return m.sender.Send(ctx, ev.ClientEmail, subject, body)
}

func (m *MailSink) compose(ev Event) (string, string, bool) {
	when := ev.ScheduledAt.In(m.loc).Format("02/01/2006 às 15:04")

	name := ""
	if ev.ClientName != nil {
		name = *ev.ClientName
	}

	switch ev.Type {
	case TypeNewBooking:
		return "Reserva confirmada",
			fmt.Sprintf("Olá %s,\n\nA sua reserva com %s para %s está confirmada.\n\nAté breve!", name, ev.BarberName, when),
			true
	case TypeCancelled:
		return "Reserva cancelada",
			fmt.Sprintf("Olá %s,\n\nA sua reserva com %s para %s foi cancelada.", name, ev.BarberName, when),
			true
	}
	return "", "", false
}

var _ Sink = (*MailSink)(nil)
