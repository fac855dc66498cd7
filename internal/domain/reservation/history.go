package reservation

import (
	"strconv"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const (
	FieldBarber      = "barber_id"
	FieldService     = "service_id"
	FieldScheduledAt = "scheduled_at"
	FieldStatus      = "status"
	FieldComment     = "comment"
	FieldPrivateNote = "private_note"
)

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	BarberID    *uint
	ServiceID   *uint
	ScheduledAt *time.Time
	Status      *string
	Comment     *string
	PrivateNote *string
}

func (c Changes) IsEmpty() bool {
	return c.BarberID == nil && c.ServiceID == nil && c.ScheduledAt == nil &&
		c.Status == nil && c.Comment == nil && c.PrivateNote == nil
}

// StatusOnly changes do not move the slot and skip the full validation path.
func (c Changes) StatusOnly() bool {
	return c.Status != nil && c.BarberID == nil && c.ServiceID == nil &&
		c.ScheduledAt == nil && c.Comment == nil && c.PrivateNote == nil
}

// Recorder collects one history entry per field that actually changed.
type Recorder struct {
	actor   ActorKind
	at      time.Time
	entries []models.EditEntry
}

func NewRecorder(actor ActorKind, at time.Time) *Recorder {
	return &Recorder{actor: actor, at: at}
}

func (r *Recorder) Record(field, before, after string) bool {
	if before == after {
		return false
	}
	r.entries = append(r.entries, models.EditEntry{
		Field:  field,
		Before: before,
		After:  after,
		At:     r.at,
		Actor:  string(r.actor),
	})
	return true
}

func (r *Recorder) RecordID(field string, before, after uint) bool {
	return r.Record(field, strconv.FormatUint(uint64(before), 10), strconv.FormatUint(uint64(after), 10))
}

func (r *Recorder) RecordTime(field string, before, after time.Time) bool {
	return r.Record(field, before.UTC().Format(time.RFC3339), after.UTC().Format(time.RFC3339))
}

func (r *Recorder) Entries() []models.EditEntry {
	return r.entries
}

func (r *Recorder) Fields() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Field)
	}
	return out
}

func (r *Recorder) Has(field string) bool {
	for _, e := range r.entries {
		if e.Field == field {
			return true
		}
	}
	return false
}

// NotesOnly reports a change restricted to the public comment and/or the
// private note.
func (r *Recorder) NotesOnly() bool {
	if len(r.entries) == 0 {
		return false
	}
	for _, e := range r.entries {
		if e.Field != FieldComment && e.Field != FieldPrivateNote {
			return false
		}
	}
	return true
}

// Append writes the collected entries onto the reservation history.
func (r *Recorder) Append(ap *models.Reservation) {
	ap.EditHistory = append(ap.EditHistory, r.entries...)
}
