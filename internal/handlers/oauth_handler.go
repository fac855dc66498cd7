package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/cache"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/oauth"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	errUnknownProvider   = httperr.ErrNotFound("unknown_provider", "Fornecedor de autenticação desconhecido.")
	errNotLinked         = httperr.ErrValidation("provider_not_linked", "Esta conta não está ligada a esse fornecedor.")
	errLastCredential    = httperr.ErrValidation("last_credential", "Defina uma password antes de remover o último método de acesso.")
	errProviderInUse     = httperr.ErrConflict("provider_already_linked", "Esta conta externa já está ligada a outro cliente.")
	errInvalidOAuthState = httperr.ErrValidation("invalid_state", "Pedido de autenticação expirado ou inválido.")
)

// OAuthHandler runs the authorization-code flow for the public site.
type OAuthHandler struct {
	db        *gorm.DB
	config    *config.Config
	providers oauth.Registry
	states    cache.StateStore
}

func NewOAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	providers oauth.Registry,
	states cache.StateStore,
) *OAuthHandler {
	return &OAuthHandler{
		db:        db,
		config:    cfg,
		providers: providers,
		states:    states,
	}
}

// ======================================================
// AUTHORIZE / LINK
// ======================================================

func (h *OAuthHandler) Authorize(c *gin.Context) {
	h.redirectToProvider(c, 0)
}

// Link starts the flow for an already authenticated client.
func (h *OAuthHandler) Link(c *gin.Context) {
	h.redirectToProvider(c, middleware.ClientID(c))
}

func (h *OAuthHandler) redirectToProvider(c *gin.Context, linkClientID uint) {
	p, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		httperr.Respond(c, errUnknownProvider)
		return
	}

	state := uuid.NewString()
	if err := h.states.Put(c.Request.Context(), state, cache.OAuthState{
		Provider:     p.Name(),
		LinkClientID: linkClientID,
		ReturnTo:     safeReturnTo(c.Query("return_to")),
	}, cache.StateTTL); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

// ======================================================
// CALLBACK
// ======================================================

func (h *OAuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		h.fail(c, errUnknownProvider)
		return
	}

	st, err := h.states.Take(ctx, c.Query("state"))
	if err != nil || st.Provider != p.Name() {
		h.fail(c, errInvalidOAuthState)
		return
	}

	if c.Query("error") != "" || c.Query("code") == "" {
		h.fail(c, errInvalidOAuthState)
		return
	}

	profile, err := p.Exchange(ctx, c.Query("code"))
	if err != nil {
		slog.WarnContext(ctx, "oauth exchange failed",
			slog.String("provider", p.Name()),
			slog.Any("error", err),
		)
		h.fail(c, errInvalidCredentials)
		return
	}

	// --------------------------------------------------
	// Ligar a uma conta existente
	// --------------------------------------------------
	if st.LinkClientID != 0 {
		if err := h.link(ctx, st.LinkClientID, p.Name(), profile.ID); err != nil {
			h.fail(c, err)
			return
		}
		h.redirectSite(c, st.ReturnTo, url.Values{"ligado": {p.Name()}})
		return
	}

	// --------------------------------------------------
	// Login / registo
	// --------------------------------------------------
	client, err := h.resolve(ctx, p.Name(), profile)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := issueSessionCookie(c, h.config, client); err != nil {
		h.fail(c, err)
		return
	}

	h.redirectSite(c, st.ReturnTo, nil)
}

// resolve finds the client by provider id, then by verified email, and
// creates one otherwise.
func (h *OAuthHandler) resolve(ctx context.Context, provider string, prof *oauth.Profile) (*models.Client, error) {
	column := providerColumn(provider)
	db := h.db.WithContext(ctx)

	var client models.Client
	err := db.Where(column+" = ?", prof.ID).First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Where("email = ?", prof.Email).First(&client).Error
	switch {
	case err == nil:
		if !prof.EmailVerified {
			return nil, errEmailTaken
		}
		if err := db.Model(&client).Updates(map[string]any{
			column:           prof.ID,
			"email_verified": true,
		}).Error; err != nil {
			return nil, err
		}
		return &client, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		id := prof.ID
		client = models.Client{
			Name:          prof.Name,
			Email:         prof.Email,
			EmailVerified: prof.EmailVerified,
		}
		setProviderID(&client, provider, &id)
		if err := db.Create(&client).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return nil, errProviderInUse
			}
			return nil, err
		}
		return &client, nil

	default:
		return nil, err
	}
}

func (h *OAuthHandler) link(ctx context.Context, clientID uint, provider, providerID string) error {
	column := providerColumn(provider)
	db := h.db.WithContext(ctx)

	var owner models.Client
	err := db.Where(column+" = ?", providerID).First(&owner).Error
	if err == nil && owner.ID != clientID {
		return errProviderInUse
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	res := db.Model(&models.Client{}).Where("id = ?", clientID).Update(column, providerID)
	if res.Error != nil {
		if httperr.IsUniqueViolation(res.Error) {
			return errProviderInUse
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errClientGone
	}
	return nil
}

// ======================================================
// UNLINK
// ======================================================

func (h *OAuthHandler) Unlink(c *gin.Context) {
	provider := c.Param("provider")
	if provider != oauth.Google && provider != oauth.Facebook {
		httperr.Respond(c, errUnknownProvider)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var client models.Client
	if err := db.First(&client, middleware.ClientID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, errClientGone)
			return
		}
		httperr.Respond(c, err)
		return
	}

	linked := client.LinkedProviders()
	if !slices.Contains(linked, provider) {
		httperr.Respond(c, errNotLinked)
		return
	}
	if !client.HasPassword() && len(linked) == 1 {
		httperr.Respond(c, errLastCredential)
		return
	}

	if err := db.Model(&client).Update(providerColumn(provider), nil).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ======================================================
// HELPERS
// ======================================================

func (h *OAuthHandler) fail(c *gin.Context, err error) {
	code := "oauth_failed"
	var be httperr.BusinessError
	if errors.As(err, &be) {
		code = be.Code
	} else {
		slog.ErrorContext(c.Request.Context(), "oauth callback failed", slog.Any("error", err))
	}
	h.redirectSite(c, "/login", url.Values{"erro": {code}})
}

func (h *OAuthHandler) redirectSite(c *gin.Context, path string, q url.Values) {
	target := strings.TrimRight(h.config.SiteURL, "/") + safeReturnTo(path)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	c.Redirect(http.StatusFound, target)
}

// safeReturnTo only accepts site-relative paths.
func safeReturnTo(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	return p
}

func providerColumn(provider string) string {
	if provider == oauth.Facebook {
		return "facebook_id"
	}
	return "google_id"
}

func setProviderID(c *models.Client, provider string, id *string) {
	if provider == oauth.Facebook {
		c.FacebookID = id
		return
	}
	c.GoogleID = id
}
