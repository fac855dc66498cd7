package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/token"
)

const (
	ContextClientID = "clientID"
	ContextAdminID  = "adminID"
	ContextClaims   = "claims"

	CookieName = "auth_token"
)

// ClientAuth reads the session cookie set at login.
func ClientAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			httperr.Unauthorized(c, "not_authenticated", "Sessão inválida ou expirada.")
			return
		}

		claims, err := token.Verify(raw, cfg.JWTSecret)
		if err != nil || claims.IsAdmin() {
			httperr.Unauthorized(c, "not_authenticated", "Sessão inválida ou expirada.")
			return
		}

		c.Set(ContextClientID, claims.ID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// AdminAuth requires a bearer token carrying the admin role.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Autenticação necessária.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Autenticação necessária.")
			return
		}

		claims, err := token.Verify(strings.TrimSpace(parts[1]), cfg.JWTSecret)
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Sessão inválida ou expirada.")
			return
		}
		if !claims.IsAdmin() {
			httperr.Forbidden(c, "admin_only", "Acesso reservado à administração.")
			return
		}

		c.Set(ContextAdminID, claims.ID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func ClientID(c *gin.Context) uint {
	return c.GetUint(ContextClientID)
}

func AdminID(c *gin.Context) uint {
	return c.GetUint(ContextAdminID)
}
