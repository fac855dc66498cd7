package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	ucReservation "github.com/BruksfildServices01/barber-booking/internal/usecase/reservation"
)

// ======================================================
// HANDLER
// ======================================================

// ReservationHandler serves the client-facing booking API.
type ReservationHandler struct {
	create  *ucReservation.CreateReservation
	edit    *ucReservation.EditReservation
	cancel  *ucReservation.CancelReservation
	queries *ucReservation.Queries
}

func NewReservationHandler(
	create *ucReservation.CreateReservation,
	edit *ucReservation.EditReservation,
	cancel *ucReservation.CancelReservation,
	queries *ucReservation.Queries,
) *ReservationHandler {
	return &ReservationHandler{
		create:  create,
		edit:    edit,
		cancel:  cancel,
		queries: queries,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateReservationRequest struct {
	BarberID  uint   `json:"barbeiro_id" binding:"required"`
	ServiceID uint   `json:"servico_id" binding:"required"`
	Date      string `json:"data" binding:"required"`
	Time      string `json:"hora" binding:"required"`
	Comment   string `json:"comentario"`
}

type UpdateReservationRequest struct {
	BarberID  *uint   `json:"barbeiro_id"`
	ServiceID *uint   `json:"servico_id"`
	Date      *string `json:"data"`
	Time      *string `json:"hora"`
	Comment   *string `json:"comentario"`
}

func clientActor(c *gin.Context) domain.Actor {
	return domain.Client(middleware.ClientID(c))
}

// ======================================================
// CREATE
// ======================================================

func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := parseLocalDateTime(req.Date, req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucReservation.CreateReservationInput{
		Actor:       clientActor(c),
		BarberID:    req.BarberID,
		ServiceID:   req.ServiceID,
		ScheduledAt: at,
		Comment:     req.Comment,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      ap.ID,
		"reserva": dto.NewReservation(ap, false),
	})
}

// ======================================================
// READ
// ======================================================

func (h *ReservationHandler) List(c *gin.Context) {
	page := httpresp.ParsePage(c)

	apps, total, err := h.queries.List(c.Request.Context(), clientActor(c), domain.ListFilter{
		Status: c.Query("estado"),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, dto.NewReservations(apps, false), page, total)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.queries.Get(c.Request.Context(), clientActor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReservation(ap, false))
}

// ======================================================
// UPDATE
// ======================================================

func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := clientActor(c)

	current, err := h.queries.Get(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	at, err := slotChange(current.ScheduledAt, req.Date, req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.edit.Execute(c.Request.Context(), ucReservation.EditReservationInput{
		ID:    id,
		Actor: actor,
		Changes: domain.Changes{
			BarberID:    req.BarberID,
			ServiceID:   req.ServiceID,
			ScheduledAt: at,
			Comment:     req.Comment,
		},
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reserva": dto.NewReservation(ap, false),
	})
}

// ======================================================
// CANCEL (soft)
// ======================================================

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), clientActor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reserva": dto.NewReservation(ap, false),
	})
}
