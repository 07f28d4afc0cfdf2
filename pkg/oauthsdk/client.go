package oauthsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the OAuth gateway. It provides the public
// operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new gateway client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthenticateWithPassword logs in with the password grant and returns a
// session for the user.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	clientID, username, password string,
) (*Session, error) {
	tokenResp, err := c.Login(ctx, clientID, username, password)
	if err != nil {
		return nil, err
	}

	return newSession(c, clientID, tokenResp), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an existing refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(
	ctx context.Context,
	clientID, refreshToken string,
) (*Session, error) {
	tokenResp, err := c.Refresh(ctx, clientID, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(c, clientID, tokenResp), nil
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere.
// The session still refreshes when the access token expires.
func (c *SDKClient) NewSessionFromTokens(clientID, accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, clientID, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}
