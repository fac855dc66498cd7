package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/testutil"
)

type captureSink struct {
	mu     sync.Mutex
	name   string
	events []Event
	err    error
	block  chan struct{}
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Handle(_ context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcher_FansOutAndDrainsOnClose(t *testing.T) {
	failing := &captureSink{name: "broken", err: errors.New("down")}
	ok := &captureSink{name: "ok"}

	d := NewDispatcher(logging.Discard(), 10, failing, ok)

	for i := 0; i < 3; i++ {
		if err := d.Emit(context.Background(), Event{Type: TypeNewBooking}); err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	// a failing sink does not stop the others
	if failing.count() != 3 || ok.count() != 3 {
		t.Fatalf("handled: failing=%d ok=%d", failing.count(), ok.count())
	}

	if err := d.Emit(context.Background(), Event{Type: TypeCancelled}); !errors.Is(err, ErrClosed) {
		t.Fatalf("emit after close = %v", err)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	slow := &captureSink{name: "slow", block: release}

	d := NewDispatcher(logging.Discard(), 1, slow)

	var dropped bool
	for i := 0; i < 5; i++ {
		if err := d.Emit(context.Background(), Event{Type: TypeEdited}); errors.Is(err, ErrQueueFull) {
			dropped = true
		}
	}
	close(release)

	if !dropped {
		t.Fatal("expected at least one event to be dropped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type fakeSender struct {
	to, subject, body string
	calls             int
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body
	return nil
}

func TestMailSink(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	name := "Alice"
	at := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ev      Event
		send    bool
		subject string
	}{
		{
			name:    "booking",
			ev:      Event{Type: TypeNewBooking, ClientName: &name, ClientEmail: "a@example.com", BarberName: "Xavier", ScheduledAt: at},
			send:    true,
			subject: "Reserva confirmada",
		},
		{
			name:    "cancellation",
			ev:      Event{Type: TypeCancelled, ClientName: &name, ClientEmail: "a@example.com", BarberName: "Xavier", ScheduledAt: at},
			send:    true,
			subject: "Reserva cancelada",
		},
		{
			name: "edit is not mailed",
			ev:   Event{Type: TypeEdited, ClientEmail: "a@example.com", ScheduledAt: at},
		},
		{
			name: "no address",
			ev:   Event{Type: TypeNewBooking, ScheduledAt: at},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			if err := NewMailSink(sender, lisbon).Handle(context.Background(), tt.ev); err != nil {
				t.Fatalf("handle: %v", err)
			}
			if (sender.calls == 1) != tt.send {
				t.Fatalf("calls = %d, want send=%v", sender.calls, tt.send)
			}
			if !tt.send {
				return
			}
			if sender.subject != tt.subject {
				t.Fatalf("subject = %q", sender.subject)
			}
			// 09:30 UTC is 10:30 in Lisbon summer time
			if !strings.Contains(sender.body, "01/07/2025 às 10:30") {
				t.Fatalf("body = %q", sender.body)
			}
		})
	}
}

func TestStore(t *testing.T) {
	db := testutil.OpenDB(t)
	s := NewStore(db)
	ctx := context.Background()

	id := uint(7)
	for _, msg := range []string{"primeira", "segunda", "terceira"} {
		if err := s.Handle(ctx, Event{Type: TypeNewBooking, Message: msg, ReservationID: &id}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	items, total, err := s.List(ctx, false, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("total=%d len=%d", total, len(items))
	}
	if items[0].Message != "terceira" {
		t.Fatalf("newest first, got %q", items[0].Message)
	}

	if err := s.MarkRead(ctx, items[0].ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.UnreadCount(ctx); n != 2 {
		t.Fatalf("unread = %d", n)
	}

	if err := s.MarkRead(ctx, 9999); err == nil {
		t.Fatal("expected error for unknown id")
	}

	if n, err := s.MarkAllRead(ctx); err != nil || n != 2 {
		t.Fatalf("mark all = %d, %v", n, err)
	}
	if _, total, _ := s.List(ctx, true, 10, 0); total != 0 {
		t.Fatalf("unread list total = %d", total)
	}
}
