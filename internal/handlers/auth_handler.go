package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/cache"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/token"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

var (
	errInvalidCredentials = httperr.ErrUnauthenticated("invalid_credentials", "Credenciais inválidas.")
	errCaptchaFailed      = httperr.ErrValidation("captcha_failed", "Verificação anti-robô falhou.")
	errEmailTaken         = httperr.ErrConflict("email_already_registered", "Já existe uma conta com este e-mail.")
	errPhoneTaken         = httperr.ErrConflict("phone_already_registered", "Já existe uma conta com este telefone.")
	errInvalidPhone       = httperr.ErrValidation("invalid_phone", "Número de telefone inválido.")
	errInvalidNIF         = httperr.ErrValidation("invalid_nif", "NIF inválido.")
	errInvalidEmailDomain = httperr.ErrValidation("invalid_email_domain", "O domínio do e-mail informado não parece ser válido.")
	errTooManyAttempts    = httperr.ErrTooManyRequests("too_many_attempts", "Demasiadas tentativas. Tente novamente mais tarde.")
	errClientGone         = httperr.ErrUnauthenticated("not_authenticated", "Sessão inválida ou expirada.")
)

// CaptchaVerifier is satisfied by the Turnstile client.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type AuthHandler struct {
	db      *gorm.DB
	config  *config.Config
	captcha CaptchaVerifier
	limiter cache.LoginLimiter
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	captcha CaptchaVerifier,
	limiter cache.LoginLimiter,
) *AuthHandler {
	return &AuthHandler{
		db:      db,
		config:  cfg,
		captcha: captcha,
		limiter: limiter,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string  `json:"nome" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"telefone" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	NIF      *string `json:"nif"`
	Captcha  string  `json:"captcha_token"`
}

type LoginRequest struct {
	// email ou telefone
	Identifier string `json:"identificador" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Captcha    string `json:"captcha_token"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.checkCaptcha(c, req.Captcha); err != nil {
		httperr.Respond(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.config.CheckEmailDomain && !validators.IsEmailDomainValid(email) {
		httperr.Respond(c, errInvalidEmailDomain)
		return
	}

	phone, err := validators.NormalizePhone(req.Phone)
	if err != nil {
		httperr.Respond(c, errInvalidPhone)
		return
	}

	ctx := c.Request.Context()
	if taken, err := phoneTaken(h.db.WithContext(ctx), phone, 0); err != nil {
		httperr.Respond(c, err)
		return
	} else if taken {
		httperr.Respond(c, errPhoneTaken)
		return
	}

	var nif *string
	if req.NIF != nil && strings.TrimSpace(*req.NIF) != "" {
		v := strings.TrimSpace(*req.NIF)
		if !validators.IsValidNIF(v) {
			httperr.Respond(c, errInvalidNIF)
			return
		}
		nif = &v
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	hash := string(hashed)

	client := models.Client{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        phone,
		NIF:          nif,
		PasswordHash: &hash,
	}

	if err := h.db.WithContext(ctx).Create(&client).Error; err != nil {
		httperr.Respond(c, mapClientWriteErr(h.db.WithContext(ctx), err, phone, 0))
		return
	}

	if err := h.startSession(c, &client); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"cliente": dto.NewClientProfile(&client),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	identifier := normalizeIdentifier(req.Identifier)

	// resolve first so every spelling of the same account shares a counter
	client, err := h.findByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.Respond(c, err)
		return
	}
	key := loginKey(identifier, client)

	if blocked, err := h.limiter.Blocked(ctx, key); err != nil {
		slog.WarnContext(ctx, "login limiter unavailable", slog.Any("error", err))
	} else if blocked {
		httperr.Respond(c, errTooManyAttempts)
		return
	}

	if err := h.checkCaptcha(c, req.Captcha); err != nil {
		httperr.Respond(c, err)
		return
	}

	if client == nil || !client.HasPassword() {
		err = errInvalidCredentials
	} else {
		err = bcrypt.CompareHashAndPassword([]byte(*client.PasswordHash), []byte(req.Password))
	}

	if err != nil {
		recordLoginFailure(ctx, h.limiter, key)
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, errInvalidCredentials) {
			httperr.Respond(c, errInvalidCredentials)
			return
		}
		httperr.Respond(c, err)
		return
	}

	resetLoginFailures(ctx, h.limiter, key)

	if err := h.startSession(c, client); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cliente": dto.NewClientProfile(client),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).
		First(&client, middleware.ClientID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			clearSessionCookie(c)
			httperr.Respond(c, errClientGone)
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewClientProfile(&client))
}

// --------- Helpers ---------

func (h *AuthHandler) checkCaptcha(c *gin.Context, tok string) error {
	ok, err := h.captcha.Verify(c.Request.Context(), tok, c.ClientIP())
	if err != nil {
		slog.WarnContext(c.Request.Context(), "captcha verification failed", slog.Any("error", err))
		return errCaptchaFailed
	}
	if !ok {
		return errCaptchaFailed
	}
	return nil
}

// normalizeIdentifier lowercases emails and turns phones into E.164.
// Unparseable phones are returned trimmed and match no account.
func normalizeIdentifier(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "@") {
		return strings.ToLower(raw)
	}
	if phone, err := validators.NormalizePhone(raw); err == nil {
		return phone
	}
	return raw
}

// findByIdentifier expects a normalized identifier.
func (h *AuthHandler) findByIdentifier(ctx context.Context, identifier string) (*models.Client, error) {
	if identifier == "" {
		return nil, gorm.ErrRecordNotFound
	}

	q := h.db.WithContext(ctx)
	if strings.Contains(identifier, "@") {
		q = q.Where("email = ?", identifier)
	} else {
		q = q.Where("phone = ?", identifier)
	}

	var client models.Client
	if err := q.First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func loginKey(identifier string, client *models.Client) string {
	if client != nil {
		return "login:client:" + strconv.FormatUint(uint64(client.ID), 10)
	}
	return "login:" + identifier
}

func recordLoginFailure(ctx context.Context, l cache.LoginLimiter, key string) {
	if err := l.Fail(ctx, key); err != nil {
		slog.WarnContext(ctx, "login limiter unavailable", slog.Any("error", err))
	}
}

func resetLoginFailures(ctx context.Context, l cache.LoginLimiter, key string) {
	if err := l.Reset(ctx, key); err != nil {
		slog.WarnContext(ctx, "login limiter reset failed", slog.Any("error", err))
	}
}

// phoneTaken reports whether another client already uses phone.
func phoneTaken(db *gorm.DB, phone string, exceptID uint) (bool, error) {
	q := db.Model(&models.Client{}).Where("phone = ?", phone)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// mapClientWriteErr tells the email and phone unique indexes apart after a
// lost race.
func mapClientWriteErr(db *gorm.DB, err error, phone string, exceptID uint) error {
	if !httperr.IsUniqueViolation(err) {
		return err
	}
	if phone != "" {
		if taken, qerr := phoneTaken(db, phone, exceptID); qerr == nil && taken {
			return errPhoneTaken
		}
	}
	return errEmailTaken
}

func (h *AuthHandler) startSession(c *gin.Context, client *models.Client) error {
	return issueSessionCookie(c, h.config, client)
}

// --------- Cookie ---------

func issueSessionCookie(c *gin.Context, cfg *config.Config, client *models.Client) error {
	signed, err := token.Issue(token.Claims{
		ID:    client.ID,
		Email: client.Email,
		Nome:  client.Name,
	}, cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, signed, int(cfg.SessionTTL.Seconds()), "/", "", true, true)
	return nil
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", true, true)
}
