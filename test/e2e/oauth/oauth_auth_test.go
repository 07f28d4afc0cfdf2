//go:build e2e

package oauth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginAndRefresh(t *testing.T) {
	client := newClient()

	tokens, err := client.Login(t.Context(), clientID, adminUsername, adminPassword)
	require.NoError(t, err)
	assertTokenResponse(t, tokens)

	refreshed, err := client.Refresh(t.Context(), clientID, tokens.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, refreshed)
	require.NotEqual(t, tokens.AccessToken, refreshed.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	_, err := newClient().Login(t.Context(), clientID, adminUsername, "nope")
	apiErr := assertAPIError(t, err, http.StatusUnauthorized, "KC-")
	require.True(t, apiErr.Upstream())
}

func TestRefreshGarbageToken(t *testing.T) {
	_, err := newClient().Refresh(t.Context(), clientID, "not-a-refresh-token")
	require.Error(t, err)
}

func TestBearerRequired(t *testing.T) {
	session := newClient().NewSessionFromTokens(clientID, "garbage", "", 300)

	_, err := session.ListUsers(t.Context(), nil)
	assertAPIError(t, err, http.StatusUnauthorized, "KC-")
}

func TestValidateAccess(t *testing.T) {
	admin := adminSession(t)
	resp, err := admin.ValidateAccess(t.Context(), "rooms")
	require.NoError(t, err)
	require.True(t, resp.Allowed)
	require.Equal(t, "rooms", resp.Resource)

	prof := performLogin(t, profUsername, profPassword)
	resp, err = prof.ValidateAccess(t.Context(), "lessons")
	require.NoError(t, err)
	require.True(t, resp.Allowed)

	_, err = prof.ValidateAccess(t.Context(), "rooms")
	assertAPIError(t, err, http.StatusForbidden, "OA-")
}
