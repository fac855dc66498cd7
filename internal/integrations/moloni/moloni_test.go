package moloni

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

type fakeMoloni struct {
	grants    atomic.Int32
	mu        sync.Mutex
	inserted  map[string]any
	pdfStatus int
	known     bool
}

func (f *fakeMoloni) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/grant/" {
			f.grants.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
			return
		}

		if r.URL.Query().Get("access_token") != "tok" {
			t.Errorf("%s called without token", r.URL.Path)
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/customers/getByVat/":
			if f.known {
				_, _ = w.Write([]byte(`[{"customer_id":42}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case "/customers/insert/":
			_, _ = w.Write([]byte(`{"valid":1,"customer_id":77}`))
		case "/invoices/insert/":
			f.mu.Lock()
			f.inserted = body
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"valid":1,"document_id":900}`))
		case "/invoices/getOne/":
			_, _ = w.Write([]byte(`{"number":15,"document_set_name":"FT2025"}`))
		case "/documents/getPDFLink/":
			if f.pdfStatus != 0 {
				w.WriteHeader(f.pdfStatus)
				return
			}
			_, _ = w.Write([]byte(`{"url":"https://moloni.example/pdf/900"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeMoloni) lastInvoice() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserted
}

func newTestClient(t *testing.T, f *fakeMoloni) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	return New(config.MoloniConfig{
		BaseURL:         srv.URL,
		ClientID:        "id",
		ClientSecret:    "secret",
		CompanyID:       5,
		DocumentSetID:   6,
		ProductID:       7,
		TaxID:           8,
		FinalCustomerID: 1,
	})
}

func TestIssueInvoice_KnownCustomer(t *testing.T) {
	f := &fakeMoloni{known: true}
	c := newTestClient(t, f)

	inv, err := c.IssueInvoice(context.Background(), InvoiceInput{
		VAT:         "123456789",
		Description: "Corte",
		Price:       12.30,
		Date:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	if inv.DocumentID != 900 || inv.Number != "FT2025 15" || inv.PDFURL == "" {
		t.Fatalf("invoice = %+v", inv)
	}
	if f.lastInvoice()["customer_id"].(float64) != 42 {
		t.Fatalf("customer_id = %v", f.lastInvoice()["customer_id"])
	}
	product := f.lastInvoice()["products"].([]any)[0].(map[string]any)
	if product["price"].(float64) != 10 {
		t.Fatalf("net price = %v", product["price"])
	}

	if _, err := c.IssueInvoice(context.Background(), InvoiceInput{Price: 10, Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if f.grants.Load() != 1 {
		t.Fatalf("token requested %d times", f.grants.Load())
	}
}

func TestIssueInvoice_FinalConsumerAndNewCustomer(t *testing.T) {
	f := &fakeMoloni{}
	c := newTestClient(t, f)

	if _, err := c.IssueInvoice(context.Background(), InvoiceInput{Price: 15, Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if f.lastInvoice()["customer_id"].(float64) != 1 {
		t.Fatalf("final consumer not used: %v", f.lastInvoice()["customer_id"])
	}

	if _, err := c.IssueInvoice(context.Background(), InvoiceInput{VAT: "999999990", Price: 15, Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if f.lastInvoice()["customer_id"].(float64) != 77 {
		t.Fatalf("new customer not used: %v", f.lastInvoice()["customer_id"])
	}
}

func TestIssueInvoice_PDFLinkFailureIsNotFatal(t *testing.T) {
	f := &fakeMoloni{pdfStatus: http.StatusInternalServerError}
	c := newTestClient(t, f)

	inv, err := c.IssueInvoice(context.Background(), InvoiceInput{Price: 15, Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if inv.PDFURL != "" || inv.Number == "" {
		t.Fatalf("invoice = %+v", inv)
	}
}

func TestIssueInvoice_NotConfigured(t *testing.T) {
	c := New(config.MoloniConfig{})
	if _, err := c.IssueInvoice(context.Background(), InvoiceInput{}); err != ErrNotConfigured {
		t.Fatalf("err = %v", err)
	}
}
