package http

import (
	"net/http"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService

	errs httpx.Errors
}

// HandleLogin exchanges user credentials for a token set
//
//	@Summary		Log in with the password grant
//	@Description	Exchanges username and password for Keycloak tokens. Accepts urlencoded, multipart or JSON bodies.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			client_id	formData	string					true	"Keycloak client id"
//	@Param			username	formData	string					true	"Username"
//	@Param			password	formData	string					true	"Password"
//	@Param			grant_type	formData	string					true	"Must be password"
//	@Success		200			{object}	oauthsdk.TokenResponse	"Token set"
//	@Failure		400			{object}	errx.Envelope			"Missing field or unsupported grant type"
//	@Failure		401			{object}	errx.Envelope			"Invalid credentials"
//	@Failure		500			{object}	errx.Envelope			"Identity provider unreachable"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	req := service.LoginRequest{
		ClientID:  f.First("client_id"),
		Username:  f.First("username"),
		Password:  f["password"],
		GrantType: f.First("grant_type"),
	}
	ctx = slogx.Annotate(ctx, "client_id", req.ClientID, "username", req.Username)

	tokens, err := h.AuthService.Login(ctx, req)
	if err != nil {
		h.errs.Write(w, r.WithContext(ctx), err)
		return
	}

	slogx.FromContext(ctx).Info("login succeeded")
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(tokens))
}

// HandleRefresh exchanges a refresh token for a new token set
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new Keycloak token set.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			client_id		formData	string					true	"Keycloak client id"
//	@Param			refresh_token	formData	string					true	"Refresh token"
//	@Success		200				{object}	oauthsdk.TokenResponse	"Token set"
//	@Failure		400				{object}	errx.Envelope			"Missing field or invalid refresh token"
//	@Failure		500				{object}	errx.Envelope			"Identity provider unreachable"
//	@Router			/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	req := service.RefreshRequest{
		ClientID:     f.First("client_id"),
		RefreshToken: f.First("refresh_token"),
	}
	ctx = slogx.Annotate(ctx, "client_id", req.ClientID)

	tokens, err := h.AuthService.Refresh(ctx, req)
	if err != nil {
		h.errs.Write(w, r.WithContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(tokens))
}

func tokenResponse(ts domain.TokenSet) oauthsdk.TokenResponse {
	return oauthsdk.TokenResponse{
		AccessToken:      ts.AccessToken,
		RefreshToken:     ts.RefreshToken,
		TokenType:        ts.TokenType,
		ExpiresIn:        ts.ExpiresIn,
		RefreshExpiresIn: ts.RefreshExpiresIn,
	}
}
