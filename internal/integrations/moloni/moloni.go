package moloni

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

var (
	ErrNotConfigured = errors.New("moloni: not configured")
	ErrRejected      = errors.New("moloni: document rejected")
)

// Client talks to the Moloni v1 API with the password grant.
type Client struct {
	cfg  config.MoloniConfig
	http *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func New(cfg config.MoloniConfig) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.ClientID != "" && c.cfg.CompanyID != 0
}

// ======================================================
// INVOICE
// ======================================================

type InvoiceInput struct {
	// VAT is the client's NIF. Empty bills the final consumer.
	VAT          string
	CustomerName string
	Email        string

	Description string
	// Price is VAT-inclusive.
	Price float64
	Date  time.Time
}

type Invoice struct {
	DocumentID int
	Number     string
	PDFURL     string
}

func (c *Client) IssueInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	customerID, err := c.customerFor(ctx, in)
	if err != nil {
		return nil, err
	}

	date := in.Date.Format("2006-01-02")

	var inserted struct {
		Valid      int `json:"valid"`
		DocumentID int `json:"document_id"`
	}
	err = c.call(ctx, "invoices/insert", map[string]any{
		"company_id":      c.cfg.CompanyID,
		"date":            date,
		"expiration_date": date,
		"document_set_id": c.cfg.DocumentSetID,
		"customer_id":     customerID,
		"status":          1,
		"products": []map[string]any{{
			"product_id": c.cfg.ProductID,
			"name":       in.Description,
			"qty":        1,
			"price":      netPrice(in.Price),
			"taxes": []map[string]any{{
				"tax_id": c.cfg.TaxID,
			}},
		}},
	}, &inserted)
	if err != nil {
		return nil, err
	}
	if inserted.Valid != 1 || inserted.DocumentID == 0 {
		return nil, ErrRejected
	}

	inv := &Invoice{DocumentID: inserted.DocumentID}

	var doc struct {
		Number          int    `json:"number"`
		DocumentSetName string `json:"document_set_name"`
	}
	if err := c.call(ctx, "invoices/getOne", map[string]any{
		"company_id":  c.cfg.CompanyID,
		"document_id": inserted.DocumentID,
	}, &doc); err != nil {
		return nil, err
	}
	inv.Number = strings.TrimSpace(doc.DocumentSetName + " " + strconv.Itoa(doc.Number))

	// the document exists already; a missing link is not fatal
	var link struct {
		URL string `json:"url"`
	}
	if err := c.call(ctx, "documents/getPDFLink", map[string]any{
		"company_id":  c.cfg.CompanyID,
		"document_id": inserted.DocumentID,
	}, &link); err != nil {
		slog.WarnContext(ctx, "moloni pdf link failed",
			"document_id", inserted.DocumentID,
			"error", err,
		)
	} else {
		inv.PDFURL = link.URL
	}

	return inv, nil
}

func (c *Client) customerFor(ctx context.Context, in InvoiceInput) (int, error) {
	if in.VAT == "" {
		return c.cfg.FinalCustomerID, nil
	}

	var found []struct {
		CustomerID int `json:"customer_id"`
	}
	if err := c.call(ctx, "customers/getByVat", map[string]any{
		"company_id": c.cfg.CompanyID,
		"vat":        in.VAT,
	}, &found); err != nil {
		return 0, err
	}
	if len(found) > 0 {
		return found[0].CustomerID, nil
	}

	var created struct {
		Valid      int `json:"valid"`
		CustomerID int `json:"customer_id"`
	}
	if err := c.call(ctx, "customers/insert", map[string]any{
		"company_id":         c.cfg.CompanyID,
		"vat":                in.VAT,
		"number":             in.VAT,
		"name":               in.CustomerName,
		"email":              in.Email,
		"language_id":        1,
		"address":            "Desconhecido",
		"zip_code":           "0000-000",
		"city":               "Desconhecido",
		"country_id":         1,
		"maturity_date_id":   0,
		"payment_method_id":  0,
		"salesman_id":        0,
		"payment_day":        0,
		"discount":           0,
		"credit_limit":       0,
		"delivery_method_id": 0,
	}, &created); err != nil {
		return 0, err
	}
	if created.Valid != 1 {
		return 0, ErrRejected
	}
	return created.CustomerID, nil
}

// netPrice strips the standard 23% VAT from a VAT-inclusive price.
func netPrice(gross float64) float64 {
	net := gross / 1.23
	return float64(int64(net*10000+0.5)) / 10000
}

// ======================================================
// TRANSPORT
// ======================================================

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	q := url.Values{}
	q.Set("grant_type", "password")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("client_secret", c.cfg.ClientSecret)
	q.Set("username", c.cfg.Username)
	q.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/grant/?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("moloni grant: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("moloni grant: empty token")
	}

	ttl := time.Duration(out.ExpiresIn) * time.Second
	if ttl <= time.Minute {
		ttl = 2 * time.Minute
	}
	c.token = out.AccessToken
	c.expires = time.Now().Add(ttl - time.Minute)

	return c.token, nil
}

func (c *Client) call(ctx context.Context, endpoint string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s/?access_token=%s&json=true", c.cfg.BaseURL, endpoint, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, out); err != nil {
		return fmt.Errorf("moloni %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	return json.Unmarshal(raw, out)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
