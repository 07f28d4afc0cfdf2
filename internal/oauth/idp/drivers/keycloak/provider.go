package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	DefaultTimeout = 10 * time.Second

	// Upstream bodies are only kept for error descriptions and debug detail.
	maxBodyBytes = 1 << 20
)

// Config addresses one realm. It is handed in at startup and never read from
// the environment by this package.
type Config struct {
	BaseURL      string        // e.g. http://localhost:8080
	Realm        string        // e.g. constrsw
	ClientID     string        // client the gateway logs users in with
	ClientSecret string        // Optional: only for confidential clients
	Audience     string        // Optional: UMA audience (default: ClientID)
	Timeout      time.Duration // Optional: per upstream call (default: 10s)
	HTTPClient   *http.Client  // Optional: replaces the default client, Timeout is ignored
}

// Provider talks to the Keycloak token, admin and userinfo endpoints of a
// single realm.
type Provider struct {
	cfg  Config
	http *http.Client
	oidc *oidc.Provider

	realmURL string // {base}/realms/{realm}
	adminURL string // {base}/admin/realms/{realm}
	tokenURL string
	infoURL  string
}

var _ idp.Provider = (*Provider)(nil)

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" || cfg.Realm == "" || cfg.ClientID == "" {
		return nil, errors.New("keycloak: base url, realm and client id are required")
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("keycloak: invalid base url %q", cfg.BaseURL)
	}

	if cfg.Audience == "" {
		cfg.Audience = cfg.ClientID
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	realm := url.PathEscape(cfg.Realm)
	p := &Provider{
		cfg:      cfg,
		http:     hc,
		realmURL: base + "/realms/" + realm,
		adminURL: base + "/admin/realms/" + realm,
	}
	p.tokenURL = p.realmURL + "/protocol/openid-connect/token"
	p.infoURL = p.realmURL + "/protocol/openid-connect/userinfo"

	// Endpoints are fixed by the realm layout, no discovery round trip.
	p.oidc = (&oidc.ProviderConfig{
		IssuerURL:   p.realmURL,
		AuthURL:     p.realmURL + "/protocol/openid-connect/auth",
		TokenURL:    p.tokenURL,
		UserInfoURL: p.infoURL,
		JWKSURL:     p.realmURL + "/protocol/openid-connect/certs",
		Algorithms:  []string{oidc.RS256},
	}).NewProvider(oidc.ClientContext(ctx, hc))

	return p, nil
}

func (p *Provider) Tokens() idp.Tokens { return &tokensRepo{p: p} }
func (p *Provider) Users() idp.Users   { return &usersRepo{p: p} }
func (p *Provider) Roles() idp.Roles   { return &rolesRepo{p: p} }

// Ping fetches the realm discovery document.
func (p *Provider) Ping(ctx context.Context) error {
	_, _, err := p.doRequest(ctx, http.MethodGet, p.realmURL+"/.well-known/openid-configuration", "", "", nil)
	return err
}

// admin joins escaped path segments onto the admin realm url.
func (p *Provider) admin(segments ...string) string {
	var b strings.Builder
	b.WriteString(p.adminURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// doJSON sends in (when non nil) as a JSON body.
func (p *Provider) doJSON(ctx context.Context, method, rawURL, token string, in any) (*http.Response, []byte, error) {
	if in == nil {
		return p.doRequest(ctx, method, rawURL, token, "", nil)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, nil, errx.Unexpected(err)
	}
	return p.doRequest(ctx, method, rawURL, token, "application/json", bytes.NewReader(b))
}

// getJSON decodes a successful response into out.
func (p *Provider) getJSON(ctx context.Context, rawURL, token string, out any) error {
	_, data, err := p.doRequest(ctx, http.MethodGet, rawURL, token, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errx.Unexpected(fmt.Errorf("keycloak: decode %s: %w", rawURL, err))
	}
	return nil
}

// doRequest performs one upstream call. Transport failures come back as
// upstream errors with status 0, non 2xx answers with their status and body.
func (p *Provider) doRequest(ctx context.Context, method, rawURL, token, contentType string, body io.Reader) (*http.Response, []byte, error) {
	log := slogx.FromContext(ctx)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, errx.Unexpected(err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	up := errx.Upstream{Method: method, URL: rawURL}

	resp, err := p.http.Do(req)
	if err != nil {
		log.Warn("keycloak call failed", "upstream_method", method, "upstream_url", rawURL, "err", err)
		return nil, nil, errx.FromUpstream(up, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, errx.FromUpstream(up, err)
	}

	log.Debug("keycloak call",
		"upstream_method", method,
		"upstream_url", rawURL,
		"upstream_status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		up.Status = resp.StatusCode
		up.Body = data
		return resp, data, errx.FromUpstream(up, nil)
	}
	return resp, data, nil
}
