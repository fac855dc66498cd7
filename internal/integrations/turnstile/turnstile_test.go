package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("secret")
	c.url = srv.URL
	return c
}

func TestVerify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("secret") != "secret" || r.PostForm.Get("remoteip") != "10.0.0.1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	})

	ok, err := c.Verify(context.Background(), "good", "10.0.0.1")
	if err != nil || !ok {
		t.Fatalf("good token: ok=%v err=%v", ok, err)
	}

	ok, err = c.Verify(context.Background(), "bad", "10.0.0.1")
	if err != nil || ok {
		t.Fatalf("bad token: ok=%v err=%v", ok, err)
	}
}

func TestVerify_EmptyTokenSkipsCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider called for an empty token")
	})

	if ok, err := c.Verify(context.Background(), " ", ""); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestVerify_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.Verify(context.Background(), "x", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestVerify_Disabled(t *testing.T) {
	c := New("")
	if ok, err := c.Verify(context.Background(), "", ""); !ok || err != nil {
		t.Fatalf("disabled client should accept: ok=%v err=%v", ok, err)
	}
}
