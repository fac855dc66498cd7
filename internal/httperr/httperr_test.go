package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"business default", BusinessError{Code: "x"}, KindValidation},
		{"conflict", ErrConflict("slot_conflict", "m"), KindConflict},
		{"wrapped forbidden", fmt.Errorf("wrap: %w", ErrForbidden("f", "m")), KindForbidden},
		{"gorm duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), KindConflict},
		{"pg unique", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"pg other", &pgconn.PgError{Code: "22001"}, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", ErrNotFound("reservation_not_found", "Reserva não encontrada."), http.StatusNotFound, "reservation_not_found"},
		{"unique violation", gorm.ErrDuplicatedKey, http.StatusConflict, "slot_conflict"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "internal_error"},
		{"too many", ErrTooManyRequests("too_many_attempts", "m"), http.StatusTooManyRequests, "too_many_attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Respond(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body HTTPError
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Fatalf("error_code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Fatalf("error field must never be empty")
			}
		})
	}
}

func TestRespond_DetailsHiddenByDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Respond(c, errors.New("pq: relation does not exist"))

	var body HTTPError
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Details != "" {
		t.Fatalf("details leaked: %q", body.Details)
	}
}
