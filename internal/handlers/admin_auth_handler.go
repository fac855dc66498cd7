package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/cache"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/token"
)

type AdminAuthHandler struct {
	db      *gorm.DB
	config  *config.Config
	limiter cache.LoginLimiter
}

func NewAdminAuthHandler(db *gorm.DB, cfg *config.Config, limiter cache.LoginLimiter) *AdminAuthHandler {
	return &AdminAuthHandler{db: db, config: cfg, limiter: limiter}
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	key := "admin:" + email

	if blocked, err := h.limiter.Blocked(ctx, key); err != nil {
		slog.WarnContext(ctx, "login limiter unavailable", slog.Any("error", err))
	} else if blocked {
		httperr.Respond(c, errTooManyAttempts)
		return
	}

	var admin models.Admin
	err := h.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password))
	}
	if err != nil {
		recordLoginFailure(ctx, h.limiter, key)
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			httperr.Respond(c, errInvalidCredentials)
			return
		}
		httperr.Respond(c, err)
		return
	}

	resetLoginFailures(ctx, h.limiter, key)

	signed, err := token.Issue(token.Claims{
		ID:    admin.ID,
		Email: admin.Email,
		Nome:  admin.Name,
		Role:  token.RoleAdmin,
	}, h.config.JWTSecret, h.config.AdminTTL)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_in": int(h.config.AdminTTL.Seconds()),
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}
