package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type StatsHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db, now: time.Now}
}

type DashboardStats struct {
	Today          int64   `json:"hoje"`
	Upcoming       int64   `json:"proximas"`
	CompletedMonth int64   `json:"concluidas_mes"`
	RevenueMonth   float64 `json:"faturacao_mes"`
	UnreadNotices  int64   `json:"notificacoes_nao_lidas"`
}

// Dashboard counts in business-local days and months.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	loc := timezone.Default()
	now := h.now().In(loc)

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	db := h.db.WithContext(c.Request.Context())
	var out DashboardStats

	// --------------------------------------------------
	// Hoje
	// --------------------------------------------------
	if err := db.Model(&models.Reservation{}).
		Where("status <> ?", string(domain.StatusCancelled)).
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart.UTC(), dayEnd.UTC()).
		Count(&out.Today).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	// --------------------------------------------------
	// Próximas
	// --------------------------------------------------
	if err := db.Model(&models.Reservation{}).
		Where("status IN ?", domain.UpcomingStatuses()).
		Where("scheduled_at > ?", now.UTC()).
		Count(&out.Upcoming).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	// --------------------------------------------------
	// Mês corrente (concluídas + faturação)
	// --------------------------------------------------
	var month struct {
		Count   int64
		Revenue float64
	}
	if err := db.Model(&models.Reservation{}).
		Select("COUNT(reservations.id) AS count, COALESCE(SUM(services.price), 0) AS revenue").
		Joins("JOIN services ON services.id = reservations.service_id").
		Where("reservations.status = ?", string(domain.StatusCompleted)).
		Where("reservations.scheduled_at >= ? AND reservations.scheduled_at < ?", monthStart.UTC(), monthEnd.UTC()).
		Scan(&month).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	out.CompletedMonth = month.Count
	out.RevenueMonth = month.Revenue

	if err := db.Model(&models.Notification{}).
		Where("read = ?", false).
		Count(&out.UnreadNotices).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
