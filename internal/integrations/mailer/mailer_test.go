package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("Barbearia <no-reply@example.com>", " ana@example.com ", "Reserva confirmada", "Olá Ana")
	if err != nil {
		t.Fatal(err)
	}

	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ana@example.com" {
		t.Fatalf("to = %v", got)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "text/plain") {
		t.Fatalf("missing plain body:\n%s", buf.String())
	}
}

func TestBuildMessage_RequiresFields(t *testing.T) {
	if _, err := buildMessage("", "ana@example.com", "x", "y"); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("missing from: %v", err)
	}
	if _, err := buildMessage("a@example.com", "", "x", "y"); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("missing to: %v", err)
	}
}

func TestSend_DisabledWithoutHost(t *testing.T) {
	m := New(config.SMTPConfig{})
	if m.Enabled() {
		t.Fatal("enabled without host")
	}
	if err := m.Send(context.Background(), "ana@example.com", "x", "y"); err != nil {
		t.Fatalf("disabled send: %v", err)
	}
}
