package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestWithinClientWindow_Boundary(t *testing.T) {
	now := time.Date(2025, 12, 25, 5, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		lead  time.Duration
		allow bool
	}{
		{"5h1s", 5*time.Hour + time.Second, true},
		{"exactly 5h", 5 * time.Hour, true},
		{"4h59m", 4*time.Hour + 59*time.Minute, false},
		{"past", -time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinClientWindow(now.Add(tt.lead), now); got != tt.allow {
				t.Fatalf("WithinClientWindow() = %v, want %v", got, tt.allow)
			}
		})
	}
}

func TestAuthorizeClient(t *testing.T) {
	now := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	ap := &models.Reservation{ClientID: 1, ScheduledAt: now.Add(2 * time.Hour)}

	if err := AuthorizeClient(ap, Client(2), now, ErrEditWindowExpired); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := AuthorizeClient(ap, Client(1), now, ErrCancelWindowExpired); !errors.Is(err, ErrCancelWindowExpired) {
		t.Fatalf("expected ErrCancelWindowExpired, got %v", err)
	}
	if err := AuthorizeClient(ap, Admin(9), now, ErrEditWindowExpired); err != nil {
		t.Fatalf("admin must bypass checks, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusConfirmed, true},
		{StatusCompleted, StatusPending, true},
		{StatusCancelled, StatusConfirmed, true},
		{StatusConfirmed, StatusConfirmed, false},
	}

	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to)
		if (err == nil) != tt.ok {
			t.Fatalf("%s -> %s: err=%v, want ok=%v", tt.from, tt.to, err, tt.ok)
		}
	}
}

func TestApplyStatus_Timestamps(t *testing.T) {
	now := time.Now().UTC()
	ap := &models.Reservation{Status: string(StatusConfirmed)}

	if changed, err := ApplyStatus(ap, StatusCompleted, now); err != nil || !changed {
		t.Fatalf("complete: changed=%v err=%v", changed, err)
	}
	if ap.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}

	if changed, err := ApplyStatus(ap, StatusConfirmed, now); err != nil || !changed {
		t.Fatalf("revert: changed=%v err=%v", changed, err)
	}
	if ap.CompletedAt != nil {
		t.Fatalf("completed_at must be cleared when leaving completed")
	}

	if changed, _ := ApplyStatus(ap, StatusConfirmed, now); changed {
		t.Fatalf("same status must be a no-op")
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	ap := &models.Reservation{Status: string(StatusCancelled)}
	if err := Cancel(ap, time.Now()); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("no_show"); err != nil {
		t.Fatalf("no_show should parse: %v", err)
	}
	_, err := ParseStatus("done")
	if httperr.KindOf(err) != httperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	at := time.Now().UTC()
	rec := NewRecorder(ActorAdmin, at)

	if rec.Record(FieldComment, "a", "a") {
		t.Fatalf("unchanged value must not be recorded")
	}
	rec.Record(FieldComment, "a", "b")
	rec.Record(FieldPrivateNote, "", "vip")

	if !rec.NotesOnly() {
		t.Fatalf("comment + private note should be notes-only")
	}

	rec.RecordID(FieldBarber, 1, 2)
	if rec.NotesOnly() {
		t.Fatalf("barber change is not notes-only")
	}

	ap := &models.Reservation{}
	rec.Append(ap)
	if len(ap.EditHistory) != 3 {
		t.Fatalf("history len = %d, want 3", len(ap.EditHistory))
	}
	if ap.EditHistory[2].Before != "1" || ap.EditHistory[2].After != "2" || ap.EditHistory[2].Actor != "admin" {
		t.Fatalf("unexpected entry: %+v", ap.EditHistory[2])
	}
}

func TestChanges_StatusOnly(t *testing.T) {
	st := "completed"
	note := "x"

	if !(Changes{Status: &st}).StatusOnly() {
		t.Fatalf("status alone should be status-only")
	}
	if (Changes{Status: &st, Comment: &note}).StatusOnly() {
		t.Fatalf("status + comment is not status-only")
	}
	if !(Changes{}).IsEmpty() {
		t.Fatalf("zero Changes should be empty")
	}
}

func TestProjectWindow(t *testing.T) {
	loc := time.UTC
	day := time.Date(2025, 12, 24, 0, 0, 0, 0, loc) // quarta-feira

	once := models.Unavailability{
		StartsAt: time.Date(2025, 12, 24, 13, 0, 0, 0, loc),
		EndsAt:   time.Date(2025, 12, 24, 14, 0, 0, 0, loc),
		Kind:     string(KindLunch),
	}
	if w, ok := ProjectWindow(once, day); !ok || !w.Start.Equal(once.StartsAt) {
		t.Fatalf("one-off window not projected: %+v ok=%v", w, ok)
	}
	if _, ok := ProjectWindow(once, day.AddDate(0, 0, 1)); ok {
		t.Fatalf("one-off window must not appear on other days")
	}

	until := time.Date(2025, 12, 31, 0, 0, 0, 0, loc)
	weekly := models.Unavailability{
		StartsAt:        time.Date(2025, 12, 10, 9, 0, 0, 0, loc),
		EndsAt:          time.Date(2025, 12, 10, 10, 30, 0, 0, loc),
		Kind:            string(KindOther),
		Recurrence:      RecurrenceWeekly,
		RecurrenceUntil: &until,
	}
	w, ok := ProjectWindow(weekly, day)
	if !ok {
		t.Fatalf("weekly window should land on the same weekday")
	}
	if !w.Start.Equal(time.Date(2025, 12, 24, 9, 0, 0, 0, loc)) || w.End.Sub(w.Start) != 90*time.Minute {
		t.Fatalf("unexpected projection: %+v", w)
	}
	if _, ok := ProjectWindow(weekly, day.AddDate(0, 0, 1)); ok {
		t.Fatalf("weekly window must skip other weekdays")
	}
	if _, ok := ProjectWindow(weekly, day.AddDate(0, 0, 14)); ok {
		t.Fatalf("weekly window must stop after recurrence_until")
	}
}
