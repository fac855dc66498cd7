package handlers

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/media"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	errBarberMissing = httperr.ErrNotFound("barber_not_found", "Barbeiro não encontrado.")
	errMediaDisabled = httperr.ErrValidation("media_disabled", "Armazenamento de imagens não configurado.")
	errInvalidImage  = httperr.ErrValidation("invalid_image", "Imagem inválida. Use JPEG ou PNG.")
	errImageTooLarge = httperr.ErrValidation("image_too_large", "Imagem demasiado grande.")
)

// PhotoUploader is satisfied by media.Store.
type PhotoUploader interface {
	UploadBarberPhoto(ctx context.Context, barberID uint, r io.Reader) (string, error)
}

type BarberHandler struct {
	db     *gorm.DB
	photos PhotoUploader
}

// NewBarberHandler accepts a nil uploader when media storage is off.
func NewBarberHandler(db *gorm.DB, photos PhotoUploader) *BarberHandler {
	return &BarberHandler{db: db, photos: photos}
}

type BarberRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (h *BarberHandler) List(c *gin.Context) {
	var barbers []models.Barber
	if err := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&barbers).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, barbers)
}

func (h *BarberHandler) Create(c *gin.Context) {
	var req BarberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		httperr.Respond(c, httperr.ErrValidation("invalid_name", "Nome obrigatório."))
		return
	}

	barber := models.Barber{Name: strings.TrimSpace(*req.Name), Active: true}
	if err := h.db.WithContext(c.Request.Context()).Create(&barber).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, barber)
}

func (h *BarberHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BarberRequest
	if !bindJSON(c, &req) {
		return
	}

	barber, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_name", "Nome obrigatório."))
			return
		}
		barber.Name = name
	}
	if req.Active != nil {
		barber.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(barber).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, barber)
}

// Deactivate keeps the barber's history; new bookings are refused.
func (h *BarberHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Barber{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, errBarberMissing)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadPhoto takes a multipart "foto" field.
func (h *BarberHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if h.photos == nil {
		httperr.Respond(c, errMediaDisabled)
		return
	}

	barber, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	fh, err := c.FormFile("foto")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Ficheiro em falta.")
		return
	}
	if fh.Size > media.MaxUpload {
		httperr.Respond(c, errImageTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	defer f.Close()

	url, err := h.photos.UploadBarberPhoto(c.Request.Context(), barber.ID, f)
	switch {
	case errors.Is(err, media.ErrTooLarge):
		httperr.Respond(c, errImageTooLarge)
		return
	case errors.Is(err, image.ErrFormat):
		httperr.Respond(c, errInvalidImage)
		return
	case err != nil:
		slog.ErrorContext(c.Request.Context(), "barber photo upload failed",
			slog.Uint64("barber_id", uint64(barber.ID)),
			slog.Any("error", err),
		)
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(barber).
		Update("photo_url", url).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "photo_url": url})
}

func (h *BarberHandler) load(c *gin.Context, id uint) (*models.Barber, error) {
	var barber models.Barber
	if err := h.db.WithContext(c.Request.Context()).First(&barber, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBarberMissing
		}
		return nil, err
	}
	return &barber, nil
}
