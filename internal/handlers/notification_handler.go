package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// ======================================================
// HANDLER
// ======================================================

type NotificationHandler struct {
	store *notify.Store
}

func NewNotificationHandler(store *notify.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List accepts ?nao_lidas=true plus page/limit.
func (h *NotificationHandler) List(c *gin.Context) {
	page := httpresp.ParsePage(c)
	unreadOnly := c.Query("nao_lidas") == "true"

	items, total, err := h.store.List(c.Request.Context(), unreadOnly, page.Limit, page.Offset())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, items, page, total)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.store.UnreadCount(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nao_lidas": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "notification_not_found", "Notificação não encontrada.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.store.MarkAllRead(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "atualizadas": n})
}
