package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const umaGrantType = "urn:ietf:params:oauth:grant-type:uma-ticket"

type tokensRepo struct {
	p *Provider
}

// oauthConfig builds the client config for clientID. The configured secret
// is only sent for the configured client.
func (r *tokensRepo) oauthConfig(clientID string) *oauth2.Config {
	secret := ""
	if clientID == r.p.cfg.ClientID {
		secret = r.p.cfg.ClientSecret
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		Scopes:       []string{oidc.ScopeOpenID},
		Endpoint: oauth2.Endpoint{
			TokenURL:  r.p.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (r *tokensRepo) Password(ctx context.Context, g domain.PasswordGrant) (domain.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.p.http)

	tok, err := r.oauthConfig(g.ClientID).PasswordCredentialsToken(ctx, g.Username, g.Password)
	if err != nil {
		return domain.TokenSet{}, r.tokenError(err)
	}
	return tokenSet(tok), nil
}

func (r *tokensRepo) Refresh(ctx context.Context, clientID, refreshToken string) (domain.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.p.http)

	// An expired token with only the refresh part forces the exchange.
	src := r.oauthConfig(clientID).TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.TokenSet{}, r.tokenError(err)
	}
	return tokenSet(tok), nil
}

// Permission asks the token endpoint for an UMA decision on resource on
// behalf of the token holder.
func (r *tokensRepo) Permission(ctx context.Context, token, resource string) error {
	form := url.Values{
		"grant_type":    {umaGrantType},
		"audience":      {r.p.cfg.Audience},
		"permission":    {resource},
		"response_mode": {"decision"},
	}

	_, data, err := r.p.doRequest(ctx, http.MethodPost, r.p.tokenURL, token,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	var decision struct {
		Result bool `json:"result"`
	}
	if err := json.Unmarshal(data, &decision); err != nil {
		return errx.Unexpected(err)
	}
	if !decision.Result {
		return errx.Forbidden("access denied")
	}
	return nil
}

func (r *tokensRepo) tokenError(err error) error {
	up := errx.Upstream{Method: http.MethodPost, URL: r.p.tokenURL}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		up.Status = re.Response.StatusCode
		up.Body = re.Body
	}
	return errx.FromUpstream(up, err)
}

func tokenSet(tok *oauth2.Token) domain.TokenSet {
	ts := domain.TokenSet{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		TokenType:        tok.TokenType,
		ExpiresIn:        tok.ExpiresIn,
		RefreshExpiresIn: extraSeconds(tok, "refresh_expires_in"),
	}
	if ts.ExpiresIn == 0 {
		ts.ExpiresIn = extraSeconds(tok, "expires_in")
	}
	if ts.TokenType == "" {
		ts.TokenType = "Bearer"
	}
	return ts
}

// extraSeconds reads a numeric field oauth2 does not model. JSON responses
// give float64, form encoded ones strings.
func extraSeconds(tok *oauth2.Token, key string) int64 {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
