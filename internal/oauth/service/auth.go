package service

import (
	"context"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp"
)

const GrantTypePassword = "password"

type LoginRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	GrantType string `json:"grant_type" validate:"required,eq=password"`
}

type RefreshRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthService struct {
	IDP idp.Provider
}

// Login exchanges user credentials for a token set. Nothing goes upstream
// unless the request is complete.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (domain.TokenSet, error) {
	if err := validateRequest(req); err != nil {
		return domain.TokenSet{}, err
	}

	var ts domain.TokenSet
	err := opLogin.run(ctx, func(ctx context.Context) (err error) {
		ts, err = s.IDP.Tokens().Password(ctx, domain.PasswordGrant{
			ClientID: req.ClientID,
			Username: req.Username,
			Password: req.Password,
		})
		return err
	})
	return ts, err
}

// Refresh exchanges a refresh token for a new token set.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (domain.TokenSet, error) {
	if err := validateRequest(req); err != nil {
		return domain.TokenSet{}, err
	}

	var ts domain.TokenSet
	err := opRefresh.run(ctx, func(ctx context.Context) (err error) {
		ts, err = s.IDP.Tokens().Refresh(ctx, req.ClientID, req.RefreshToken)
		return err
	})
	return ts, err
}
