package service

import (
	"context"
	"net/http"
	"testing"

	kctest "github.com/aussiebroadwan/oauthgw/internal/oauth/idp/drivers/keycloak/keycloaktest"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/stretchr/testify/require"
)

func serveRoles(roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kctest.JSON(w, http.StatusOK, map[string]any{
			"sub":          "u-1",
			"realm_access": map[string]any{"roles": roles},
		})
	}
}

func allowlistService(t *testing.T, kc *kctest.Server) *AccessService {
	t.Helper()

	policy, err := NewAccessPolicy(PolicyAllowlist, kc.Provider(t), nil)
	require.NoError(t, err)
	return &AccessService{Policy: policy}
}

func TestValidateAllowlist(t *testing.T) {
	t.Parallel()

	t.Run("administrator may use rooms", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleRealm(http.MethodGet, "/protocol/openid-connect/userinfo", serveRoles("administrator"))

		d, err := allowlistService(t, kc).Validate(context.Background(), "tok", "rooms")
		require.NoError(t, err)
		require.Equal(t, AccessDecision{Resource: "rooms", Allowed: true}, d)
	})

	t.Run("professor may not", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleRealm(http.MethodGet, "/protocol/openid-connect/userinfo", serveRoles("professor"))

		_, err := allowlistService(t, kc).Validate(context.Background(), "tok", "rooms")
		status, env := normalize(err)
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "OA-403", env.Code)
		require.Equal(t, "access denied", env.Description)
	})

	t.Run("missing resource", func(t *testing.T) {
		kc := kctest.New(t)

		_, err := allowlistService(t, kc).Validate(context.Background(), "tok", " ")
		require.Equal(t, errx.KindValidation, errx.KindOf(err))
		require.Empty(t, kc.Calls())
	})

	t.Run("rejected token", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleRealm(http.MethodGet, "/protocol/openid-connect/userinfo", kctest.Status(http.StatusUnauthorized))

		_, err := allowlistService(t, kc).Validate(context.Background(), "tok", "rooms")
		status, env := normalize(err)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "KC-401", env.Code)
		require.Equal(t, "invalid or expired token", env.Description)
	})
}

func TestValidateUMA(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	kc.HandleToken(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("permission") == "rooms" {
			kctest.JSON(w, http.StatusOK, map[string]bool{"result": true})
			return
		}
		kctest.JSON(w, http.StatusForbidden, map[string]string{"error": "access_denied", "error_description": "not_authorized"})
	})

	policy, err := NewAccessPolicy(PolicyUMA, kc.Provider(t), nil)
	require.NoError(t, err)
	svc := &AccessService{Policy: policy}

	_, err = svc.Validate(context.Background(), "tok", "rooms")
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), "tok", "buildings")
	status, env := normalize(err)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "OA-403", env.Code)
}

func TestAllowlist(t *testing.T) {
	t.Parallel()

	a := Allowlist{"Administrator": {"*"}, "student": {"Classes"}}.Normalized()
	require.True(t, a.Allows([]string{"administrator"}, "anything"))
	require.True(t, a.Allows([]string{"STUDENT"}, "classes"))
	require.False(t, a.Allows([]string{"student"}, "rooms"))
	require.False(t, a.Allows(nil, "classes"))

	_, err := NewAccessPolicy("magic", nil, nil)
	require.Error(t, err)
}
