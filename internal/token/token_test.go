package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func TestIssueVerify_RoundTrip(t *testing.T) {
	tok, err := Issue(Claims{ID: 7, Email: "ana@example.pt", Nome: "Ana"}, secret, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Verify(tok, secret)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ID != 7 || claims.Email != "ana@example.pt" || claims.Nome != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.IsAdmin() {
		t.Fatalf("client token must not be admin")
	}
}

func TestVerify_ExpiredWithValidSignature(t *testing.T) {
	tok, err := Issue(Claims{ID: 1, Email: "a@b.pt"}, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := Verify(tok, secret); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerify_FailuresCollapse(t *testing.T) {
	valid, err := Issue(Claims{ID: 1}, secret, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(valid, ".")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: 1}).SignedString([]byte(secret))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:               1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noID, _ := Issue(Claims{Email: "x@y.pt"}, secret, time.Hour)

	tests := []struct {
		name  string
		token string
		key   string
	}{
		{"wrong secret", valid, "other"},
		{"tampered payload", parts[0] + "." + parts[1] + "x." + parts[2], secret},
		{"malformed", "not-a-token", secret},
		{"empty", "", secret},
		{"missing exp", noExp, secret},
		{"alg none", noneAlg, secret},
		{"missing id", noID, secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(tt.token, tt.key)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
