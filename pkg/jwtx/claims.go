package jwtx

import (
	"errors"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the bearer value is not a decodable JWT.
var ErrMalformed = errors.New("jwtx: malformed token")

// RealmAccess is the Keycloak realm role block.
type RealmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// Claims are the Keycloak access-token claims the gateway looks at.
type Claims struct {
	jwt.RegisteredClaims

	// Authorized party, the client the token was issued to
	AZP string `json:"azp,omitempty"`

	PreferredUsername string `json:"preferred_username,omitempty"`

	RealmAccess RealmAccess `json:"realm_access,omitempty"`
}

// Peek decodes the token payload WITHOUT checking the signature. Keycloak is
// the only party that gets to decide whether a token is good; the gateway
// reads claims for log correlation and nothing else.
func Peek(raw string) (Claims, error) {
	var c Claims

	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return c, ErrMalformed
	}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return Claims{}, errors.Join(ErrMalformed, err)
	}
	return c, nil
}

// HasRealmRole reports whether the realm_access block lists role.
func (c *Claims) HasRealmRole(role string) bool {
	return slices.Contains(c.RealmAccess.Roles, role)
}
