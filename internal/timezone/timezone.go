package timezone

import (
	"sync"
	"time"
)

const DefaultTimezone = "Europe/Lisbon"

var (
	mu      sync.RWMutex
	current = DefaultTimezone
)

func isValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// SetDefault changes the business timezone. Invalid names are ignored.
func SetDefault(tz string) bool {
	if !isValid(tz) {
		return false
	}
	mu.Lock()
	current = tz
	mu.Unlock()
	return true
}

func location(tz string) *time.Location {
	if isValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Default is the business location used to interpret calendar days.
func Default() *time.Location {
	mu.RLock()
	tz := current
	mu.RUnlock()
	return location(tz)
}

// DayBounds returns [00:00, next 00:00) of the given YYYY-MM-DD in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return d, d.AddDate(0, 0, 1), nil
}
