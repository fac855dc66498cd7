package httperr

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExposeDetails echoes raw internal error text in the "details" field.
// Enabled outside production only.
var ExposeDetails = false

type HTTPError struct {
	Error   string `json:"error"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = code
	}
	c.AbortWithStatusJSON(status, HTTPError{
		Error:   message,
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond translates any error returned by a use case into the JSON error body.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)

	if be, ok := asBusiness(err); ok {
		Write(c, kind.Status(), be.Code, be.Message)
		return
	}

	if kind == KindConflict {
		Write(c, http.StatusConflict, "slot_conflict", "Horário já reservado.")
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		slog.String("path", c.FullPath()),
		slog.Any("error", err),
	)

	body := HTTPError{
		Error:   "Erro interno.",
		Code:    "internal_error",
		Message: "Erro interno.",
	}
	if ExposeDetails {
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
