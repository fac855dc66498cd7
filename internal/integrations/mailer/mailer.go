package mailer

import (
	"context"
	"errors"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

var ErrInvalidMessage = errors.New("mailer: from, to and subject are required")

const sendTimeout = 15 * time.Second

// Mailer sends plain-text mail over SMTP. Without a host it is a no-op.
type Mailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func New(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		m.dialer.SSL = cfg.Port == 465
	}
	return m
}

func (m *Mailer) Enabled() bool {
	return m.dialer != nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.Enabled() {
		return nil
	}

	msg, err := buildMessage(m.cfg.From, to, subject, body)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	wait := sendTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func buildMessage(from, to, subject, body string) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	subject = strings.TrimSpace(subject)

	if from == "" || to == "" || subject == "" {
		return nil, ErrInvalidMessage
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return msg, nil
}
