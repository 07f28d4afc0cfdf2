package idp

import (
	"context"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
)

// Provider is the root identity provider interface. Drivers (keycloak)
// implement this. Like the store layout it exposes sub-APIs so services only
// see the slice they use.
//
// Every call is made on behalf of the caller: admin calls carry the caller's
// access token, never a service account. Failures are *errx.Error values of
// kind upstream carrying the status and body the provider answered with.
type Provider interface {
	Tokens() Tokens
	Users() Users
	Roles() Roles

	// Ping fetches the realm discovery document.
	Ping(ctx context.Context) error
}

type Tokens interface {
	// Password runs the resource-owner password grant.
	Password(ctx context.Context, g domain.PasswordGrant) (domain.TokenSet, error)

	// Refresh exchanges a refresh token.
	Refresh(ctx context.Context, clientID, refreshToken string) (domain.TokenSet, error)

	// Permission asks for an UMA decision on resource. nil means granted.
	Permission(ctx context.Context, token, resource string) error

	// UserInfo returns the identity behind token.
	UserInfo(ctx context.Context, token string) (domain.UserInfo, error)
}

type Users interface {
	// List returns user records, optionally filtered by the enabled flag.
	List(ctx context.Context, token string, enabled *bool) ([]domain.UserRecord, error)

	Get(ctx context.Context, token, id string) (domain.UserRecord, error)

	// Create returns the id the provider assigned.
	Create(ctx context.Context, token string, rec domain.UserRecord) (string, error)

	// Update replaces the record with rec.
	Update(ctx context.Context, token, id string, rec domain.UserRecord) error

	// ResetPassword sets a permanent password.
	ResetPassword(ctx context.Context, token, id, password string) error

	// RealmRoles lists the realm role mappings of a user.
	RealmRoles(ctx context.Context, token, id string) ([]domain.Role, error)

	AddRealmRoles(ctx context.Context, token, id string, roles []domain.Role) error
	RemoveRealmRoles(ctx context.Context, token, id string, roles []domain.Role) error
}

type Roles interface {
	List(ctx context.Context, token string) ([]domain.Role, error)
	Get(ctx context.Context, token, name string) (domain.Role, error)
	Create(ctx context.Context, token string, r domain.Role) error

	// Update replaces the role addressed by name.
	Update(ctx context.Context, token, name string, r domain.Role) error

	Delete(ctx context.Context, token, name string) error
}
