package handlers

import (
	"net/http"
	"time"

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

type AdminReservationHandler struct {
	create  *ucReservation.CreateReservation
	edit    *ucReservation.EditReservation
	status  *ucReservation.ChangeReservationStatus
	cancel  *ucReservation.CancelReservation
	remove  *ucReservation.DeleteReservation
	invoice *ucReservation.IssueInvoice
	queries *ucReservation.Queries
}

type AdminReservationDeps struct {
	Create  *ucReservation.CreateReservation
	Edit    *ucReservation.EditReservation
	Status  *ucReservation.ChangeReservationStatus
	Cancel  *ucReservation.CancelReservation
	Delete  *ucReservation.DeleteReservation
	Invoice *ucReservation.IssueInvoice
	Queries *ucReservation.Queries
}

func NewAdminReservationHandler(d AdminReservationDeps) *AdminReservationHandler {
	return &AdminReservationHandler{
		create:  d.Create,
		edit:    d.Edit,
		status:  d.Status,
		cancel:  d.Cancel,
		remove:  d.Delete,
		invoice: d.Invoice,
		queries: d.Queries,
	}
}

func adminActor(c *gin.Context) domain.Actor {
	return domain.Admin(middleware.AdminID(c))
}

// ======================================================
// REQUESTS
// ======================================================

type AdminCreateReservationRequest struct {
	ClientID    uint   `json:"cliente_id" binding:"required"`
	BarberID    uint   `json:"barbeiro_id" binding:"required"`
	ServiceID   uint   `json:"servico_id" binding:"required"`
	Date        string `json:"data" binding:"required"`
	Time        string `json:"hora" binding:"required"`
	Comment     string `json:"comentario"`
	PrivateNote string `json:"nota_privada"`
	Status      string `json:"estado"`
}

type AdminUpdateReservationRequest struct {
	BarberID    *uint   `json:"barbeiro_id"`
	ServiceID   *uint   `json:"servico_id"`
	Date        *string `json:"data"`
	Time        *string `json:"hora"`
	Status      *string `json:"estado"`
	Comment     *string `json:"comentario"`
	PrivateNote *string `json:"nota_privada"`
}

type StatusRequest struct {
	Status string `json:"estado" binding:"required"`
}

// ======================================================
// READ
// ======================================================

// List accepts barbeiro, cliente, estado, de, ate, page and limit.
func (h *AdminReservationHandler) List(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	page := httpresp.ParsePage(c)

	apps, total, err := h.queries.List(c.Request.Context(), adminActor(c), domain.ListFilter{
		BarberID: queryUint(c, "barbeiro"),
		ClientID: queryUint(c, "cliente"),
		Status:   c.Query("estado"),
		From:     from,
		To:       to,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, dto.NewReservations(apps, true), page, total)
}

func (h *AdminReservationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.queries.Get(c.Request.Context(), adminActor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReservation(ap, true))
}

// ======================================================
// WRITE
// ======================================================

func (h *AdminReservationHandler) Create(c *gin.Context) {
	var req AdminCreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := parseLocalDateTime(req.Date, req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucReservation.CreateReservationInput{
		Actor:       adminActor(c),
		ClientID:    req.ClientID,
		BarberID:    req.BarberID,
		ServiceID:   req.ServiceID,
		ScheduledAt: at,
		Comment:     req.Comment,
		PrivateNote: req.PrivateNote,
		Status:      req.Status,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewReservation(ap, true))
}

func (h *AdminReservationHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdminUpdateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := adminActor(c)

	var at *time.Time
	if req.Date != nil || req.Time != nil {
		current, err := h.queries.Get(c.Request.Context(), actor, id)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		if at, err = slotChange(current.ScheduledAt, req.Date, req.Time); err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	ap, err := h.edit.Execute(c.Request.Context(), ucReservation.EditReservationInput{
		ID:    id,
		Actor: actor,
		Changes: domain.Changes{
			BarberID:    req.BarberID,
			ServiceID:   req.ServiceID,
			ScheduledAt: at,
			Status:      req.Status,
			Comment:     req.Comment,
			PrivateNote: req.PrivateNote,
		},
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReservation(ap, true))
}

func (h *AdminReservationHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), adminActor(c), id, req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReservation(ap, true))
}

func (h *AdminReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), adminActor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReservation(ap, true))
}

// Delete removes the row for good. Soft cancel is Cancel.
func (h *AdminReservationHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), adminActor(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ======================================================
// INVOICE
// ======================================================

func (h *AdminReservationHandler) Invoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.invoice.Execute(c.Request.Context(), adminActor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"numero_fatura": res.Reservation.InvoiceNumber,
		"pdf_url":       res.PDFURL,
		"reserva":       dto.NewReservation(res.Reservation, true),
	})
}
