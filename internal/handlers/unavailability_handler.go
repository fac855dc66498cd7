package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	errUnavailabilityMissing = httperr.ErrNotFound("unavailability_not_found", "Indisponibilidade não encontrada.")
	errInvalidWindow         = httperr.ErrValidation("invalid_window", "O fim tem de ser posterior ao início.")
	errInvalidKind           = httperr.ErrValidation("invalid_kind", "Tipo de indisponibilidade inválido.")
	errInvalidRecurrence     = httperr.ErrValidation("invalid_recurrence", "Recorrência inválida.")
)

// UnavailabilityHandler manages barber absences and blocked periods.
type UnavailabilityHandler struct {
	db *gorm.DB
}

func NewUnavailabilityHandler(db *gorm.DB) *UnavailabilityHandler {
	return &UnavailabilityHandler{db: db}
}

type UnavailabilityRequest struct {
	BarberID        uint       `json:"barber_id" binding:"required"`
	StartsAt        time.Time  `json:"starts_at" binding:"required"`
	EndsAt          time.Time  `json:"ends_at" binding:"required"`
	Kind            string     `json:"kind" binding:"required"`
	Reason          string     `json:"reason"`
	Recurrence      string     `json:"recurrence"`
	RecurrenceUntil *time.Time `json:"recurrence_until"`
}

func (r UnavailabilityRequest) validate() error {
	if !r.EndsAt.After(r.StartsAt) {
		return errInvalidWindow
	}
	if !domain.ValidKind(r.Kind) {
		return errInvalidKind
	}
	if !domain.ValidRecurrence(r.Recurrence) {
		return errInvalidRecurrence
	}
	if r.Recurrence != domain.RecurrenceNone && r.EndsAt.Sub(r.StartsAt) > 24*time.Hour {
		return errInvalidWindow
	}
	return nil
}

func (r UnavailabilityRequest) apply(u *models.Unavailability) {
	u.BarberID = r.BarberID
	u.StartsAt = r.StartsAt.UTC()
	u.EndsAt = r.EndsAt.UTC()
	u.Kind = r.Kind
	u.Reason = strings.TrimSpace(r.Reason)
	u.Recurrence = r.Recurrence
	u.RecurrenceUntil = nil
	if r.RecurrenceUntil != nil && r.Recurrence != domain.RecurrenceNone {
		until := r.RecurrenceUntil.UTC()
		u.RecurrenceUntil = &until
	}
}

// List filters by barbeiro and the de/ate day range. Recurring windows
// are returned whenever they started before the range ends.
func (h *UnavailabilityHandler) List(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context())

	if barberID := queryUint(c, "barbeiro"); barberID != 0 {
		q = q.Where("barber_id = ?", barberID)
	}
	if from != nil {
		q = q.Where("(ends_at > ? OR recurrence <> '')", *from)
	}
	if to != nil {
		q = q.Where("starts_at < ?", *to)
	}

	var out []models.Unavailability
	if err := q.Order("starts_at ASC").Find(&out).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *UnavailabilityHandler) Create(c *gin.Context) {
	var req UnavailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httperr.Respond(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	if err := db.First(&models.Barber{}, req.BarberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, errBarberMissing)
			return
		}
		httperr.Respond(c, err)
		return
	}

	var u models.Unavailability
	req.apply(&u)

	if err := db.Create(&u).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

func (h *UnavailabilityHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UnavailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		httperr.Respond(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var u models.Unavailability
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, errUnavailabilityMissing)
			return
		}
		httperr.Respond(c, err)
		return
	}

	req.apply(&u)

	if err := db.Save(&u).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func (h *UnavailabilityHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Unavailability{}, id)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, errUnavailabilityMissing)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
