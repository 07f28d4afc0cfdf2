package oauthsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Login exchanges user credentials for a token set.
func (c *SDKClient) Login(
	ctx context.Context,
	clientID, username, password string,
) (*TokenResponse, error) {
	data := url.Values{
		"client_id":  {clientID},
		"username":   {username},
		"password":   {password},
		"grant_type": {"password"},
	}

	return c.requestToken(ctx, "/login", data)
}

// Refresh exchanges a refresh token for a new token set.
func (c *SDKClient) Refresh(
	ctx context.Context,
	clientID, refreshToken string,
) (*TokenResponse, error) {
	data := url.Values{
		"client_id":     {clientID},
		"refresh_token": {refreshToken},
	}

	return c.requestToken(ctx, "/refresh", data)
}

func (c *SDKClient) requestToken(ctx context.Context, path string, data url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, "",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
