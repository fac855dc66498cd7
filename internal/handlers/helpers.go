package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

var errInvalidDateTime = httperr.ErrValidation("invalid_date_or_time", "Data ou hora inválida.")

// --------------------------------------------------
// Params / body
// --------------------------------------------------

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		httperr.Write(c, 400, "invalid_request", "Dados inválidos ou em falta.")
		return false
	}
	return true
}

func queryUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// --------------------------------------------------
// Business-local time
// --------------------------------------------------

// parseLocalDateTime reads "YYYY-MM-DD" + "HH:MM" in the business timezone.
func parseLocalDateTime(date, hm string) (time.Time, error) {
	t, err := time.ParseInLocation(
		"2006-01-02 15:04",
		strings.TrimSpace(date)+" "+strings.TrimSpace(hm),
		timezone.Default(),
	)
	if err != nil {
		return time.Time{}, errInvalidDateTime
	}
	return t, nil
}

func parseLocalDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), timezone.Default())
}

// dateRange reads optional "de"/"ate" (inclusive days) query parameters.
func dateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time

	if s := c.Query("de"); s != "" {
		d, err := parseLocalDate(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida, use o formato AAAA-MM-DD.")
			return nil, nil, false
		}
		from = &d
	}
	if s := c.Query("ate"); s != "" {
		d, err := parseLocalDate(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida, use o formato AAAA-MM-DD.")
			return nil, nil, false
		}
		end := d.AddDate(0, 0, 1)
		to = &end
	}

	return from, to, true
}

// slotChange resolves the optional date/time pair of an edit body. Both are
// needed when either one is given; a missing half keeps the stored value.
func slotChange(current time.Time, date, hm *string) (*time.Time, error) {
	if date == nil && hm == nil {
		return nil, nil
	}

	local := current.In(timezone.Default())
	d := local.Format("2006-01-02")
	h := local.Format("15:04")
	if date != nil {
		d = *date
	}
	if hm != nil {
		h = *hm
	}

	t, err := parseLocalDateTime(d, h)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
