package reservation

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type UnavailabilityKind string

const (
	KindDayOff   UnavailabilityKind = "day_off"
	KindLunch    UnavailabilityKind = "lunch"
	KindVacation UnavailabilityKind = "vacation"
	KindAbsence  UnavailabilityKind = "absence"
	KindOther    UnavailabilityKind = "other"
)

const (
	RecurrenceNone   = ""
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

func ValidKind(s string) bool {
	switch UnavailabilityKind(s) {
	case KindDayOff, KindLunch, KindVacation, KindAbsence, KindOther:
		return true
	}
	return false
}

func ValidRecurrence(s string) bool {
	return s == RecurrenceNone || s == RecurrenceDaily || s == RecurrenceWeekly
}

type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Kind  string    `json:"kind"`
}

// ProjectWindow places u onto the calendar day starting at dayStart. Recurring
// windows repeat their time-of-day from the original start until
// RecurrenceUntil (inclusive of that day).
func ProjectWindow(u models.Unavailability, dayStart time.Time) (Window, bool) {
	dayEnd := dayStart.AddDate(0, 0, 1)

	if u.Recurrence == RecurrenceNone {
		if u.StartsAt.Before(dayEnd) && u.EndsAt.After(dayStart) {
			return Window{Start: u.StartsAt, End: u.EndsAt, Kind: u.Kind}, true
		}
		return Window{}, false
	}

	loc := dayStart.Location()
	origin := u.StartsAt.In(loc)
	originDay := time.Date(origin.Year(), origin.Month(), origin.Day(), 0, 0, 0, 0, loc)

	if dayStart.Before(originDay) {
		return Window{}, false
	}
	if u.RecurrenceUntil != nil && dayStart.After(*u.RecurrenceUntil) {
		return Window{}, false
	}
	if u.Recurrence == RecurrenceWeekly && dayStart.Weekday() != originDay.Weekday() {
		return Window{}, false
	}

	length := u.EndsAt.Sub(u.StartsAt)
	start := time.Date(
		dayStart.Year(), dayStart.Month(), dayStart.Day(),
		origin.Hour(), origin.Minute(), origin.Second(), 0,
		loc,
	)

	return Window{Start: start, End: start.Add(length), Kind: u.Kind}, true
}
