package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

const recentReservations = 10

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ======================================================
// LIST CLIENTS (ADMIN)
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	page := httpresp.ParsePage(c)
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var clients []models.Client
	if err := q.
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&clients).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]dto.ClientProfile, 0, len(clients))
	for i := range clients {
		out = append(out, dto.NewClientProfile(&clients[i]))
	}

	httpresp.Page(c, out, page, total)
}

// ======================================================
// GET CLIENT (+ últimas reservas)
// ======================================================
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, domain.ErrClientNotFound)
			return
		}
		httperr.Respond(c, err)
		return
	}

	var recent []models.Reservation
	if err := db.
		Preload("Client").
		Preload("Barber").
		Preload("Service").
		Where("client_id = ?", id).
		Order("scheduled_at DESC").
		Limit(recentReservations).
		Find(&recent).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cliente":  dto.NewClientProfile(&client),
		"reservas": dto.NewReservations(recent, true),
	})
}

// ======================================================
// UPDATE CLIENT
// ======================================================

type UpdateClientRequest struct {
	Name  *string `json:"nome"`
	Phone *string `json:"telefone"`
	NIF   *string `json:"nif"`
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_name", "Nome obrigatório."))
			return
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		phone, err := validators.NormalizePhone(*req.Phone)
		if err != nil {
			httperr.Respond(c, errInvalidPhone)
			return
		}
		taken, err := phoneTaken(h.db.WithContext(c.Request.Context()), phone, id)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		if taken {
			httperr.Respond(c, errPhoneTaken)
			return
		}
		updates["phone"] = phone
	}
	if req.NIF != nil {
		nif := strings.TrimSpace(*req.NIF)
		switch {
		case nif == "":
			updates["nif"] = nil
		case !validators.IsValidNIF(nif):
			httperr.Respond(c, errInvalidNIF)
			return
		default:
			updates["nif"] = nif
		}
	}

	if len(updates) == 0 {
		httperr.Respond(c, domain.ErrNoChanges)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	res := db.Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		phone, _ := updates["phone"].(string)
		httperr.Respond(c, mapClientWriteErr(db, res.Error, phone, id))
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, domain.ErrClientNotFound)
		return
	}

	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewClientProfile(&client))
}
