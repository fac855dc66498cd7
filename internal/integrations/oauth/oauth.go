package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

const (
	Google   = "google"
	Facebook = "facebook"
)

var ErrNoEmail = errors.New("oauth: provider returned no email")

// Profile is the identity a provider vouches for.
type Profile struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

type provider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	parse       func([]byte) (*Profile, error)
}

func (p *provider) Name() string { return p.name }

func (p *provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth %s exchange: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth %s userinfo: %w", p.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth %s userinfo: status %d", p.name, resp.StatusCode)
	}

	prof, err := p.parse(raw)
	if err != nil {
		return nil, err
	}
	prof.Email = strings.ToLower(strings.TrimSpace(prof.Email))
	if prof.Email == "" {
		return nil, ErrNoEmail
	}
	return prof, nil
}

// ======================================================
// PROVIDERS
// ======================================================

func newGoogle(clientID, secret, redirect string, endpoint oauth2.Endpoint, userInfoURL string) Provider {
	return &provider{
		name: Google,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirect,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
		parse: func(raw []byte) (*Profile, error) {
			var v struct {
				Sub           string `json:"sub"`
				Email         string `json:"email"`
				EmailVerified bool   `json:"email_verified"`
				Name          string `json:"name"`
			}
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return &Profile{ID: v.Sub, Email: v.Email, Name: v.Name, EmailVerified: v.EmailVerified}, nil
		},
	}
}

func newFacebook(clientID, secret, redirect string, endpoint oauth2.Endpoint, userInfoURL string) Provider {
	return &provider{
		name: Facebook,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirect,
			Endpoint:     endpoint,
			Scopes:       []string{"email", "public_profile"},
		},
		userInfoURL: userInfoURL,
		parse: func(raw []byte) (*Profile, error) {
			var v struct {
				ID    string `json:"id"`
				Email string `json:"email"`
				Name  string `json:"name"`
			}
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			// Facebook only returns confirmed addresses
			return &Profile{ID: v.ID, Email: v.Email, Name: v.Name, EmailVerified: v.Email != ""}, nil
		},
	}
}

// Registry holds the providers that have credentials configured.
type Registry map[string]Provider

func NewRegistry(cfg config.OAuthConfig) Registry {
	base := strings.TrimRight(cfg.RedirectBase, "/")
	redirect := func(name string) string {
		return base + "/api_auth/oauth/" + name + "/callback"
	}

	r := Registry{}
	if cfg.Google.ClientID != "" {
		r[Google] = newGoogle(
			cfg.Google.ClientID, cfg.Google.ClientSecret, redirect(Google),
			endpoints.Google, "https://openidconnect.googleapis.com/v1/userinfo",
		)
	}
	if cfg.Facebook.ClientID != "" {
		r[Facebook] = newFacebook(
			cfg.Facebook.ClientID, cfg.Facebook.ClientSecret, redirect(Facebook),
			endpoints.Facebook, "https://graph.facebook.com/me?fields=id,name,email",
		)
	}
	return r
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
