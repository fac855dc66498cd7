package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	ucReservation "github.com/BruksfildServices01/barber-booking/internal/usecase/reservation"
)

// CatalogHandler is the public, unauthenticated read side.
type CatalogHandler struct {
	db      *gorm.DB
	queries *ucReservation.Queries
}

func NewCatalogHandler(db *gorm.DB, queries *ucReservation.Queries) *CatalogHandler {
	return &CatalogHandler{db: db, queries: queries}
}

func (h *CatalogHandler) ListBarbers(c *gin.Context) {
	var barbers []models.Barber
	if err := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("name ASC").
		Find(&barbers).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, barbers)
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("price ASC").
		Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}

// Occupied returns the taken intervals of one barber on ?data=YYYY-MM-DD.
func (h *CatalogHandler) Occupied(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	out, err := h.queries.Occupied(c.Request.Context(), id, c.Query("data"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
