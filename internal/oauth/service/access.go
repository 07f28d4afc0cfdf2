package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

const (
	PolicyAllowlist = "allowlist"
	PolicyUMA       = "uma"

	// Wildcard in an allow-list grants every resource.
	Wildcard = "*"
)

// AccessPolicy decides whether the token holder may use resource. nil means
// allowed; a denial is a forbidden error.
type AccessPolicy interface {
	Check(ctx context.Context, token, resource string) error
}

// Allowlist maps a realm role to the resources it may access.
type Allowlist map[string][]string

// DefaultAllowlist is the role matrix used when configuration has none.
func DefaultAllowlist() Allowlist {
	return Allowlist{
		"administrator": {"users", "roles", "rooms", "classes", "courses", "students", "professors", "curriculums", "buildings", "resources", "lessons"},
		"coordinator":   {"rooms", "classes", "courses", "curriculums", "professors", "students", "buildings"},
		"professor":     {"classes", "lessons", "students"},
		"student":       {"classes", "courses", "lessons"},
	}
}

// Allows reports whether any of roles grants resource. Matching ignores case.
func (a Allowlist) Allows(roles []string, resource string) bool {
	for _, role := range roles {
		for _, r := range a[strings.ToLower(role)] {
			if r == Wildcard || strings.EqualFold(r, resource) {
				return true
			}
		}
	}
	return false
}

// Normalized lower-cases role names so lookups ignore case.
func (a Allowlist) Normalized() Allowlist {
	out := make(Allowlist, len(a))
	for _, role := range slices.Sorted(maps.Keys(a)) {
		key := strings.ToLower(strings.TrimSpace(role))
		out[key] = append(out[key], a[role]...)
	}
	return out
}

// AllowlistPolicy reads the caller's roles from the userinfo endpoint and
// checks them against a fixed matrix.
type AllowlistPolicy struct {
	IDP   idp.Provider
	Allow Allowlist
}

func (p *AllowlistPolicy) Check(ctx context.Context, token, resource string) error {
	info, err := p.IDP.Tokens().UserInfo(ctx, token)
	if err != nil {
		return err
	}

	if !p.Allow.Allows(info.Roles, resource) {
		slogx.FromContext(ctx).Info("access denied", "resource", resource, "roles", info.Roles)
		return errx.Forbidden("access denied")
	}
	return nil
}

// UMAPolicy asks Keycloak's authorization services for a decision.
type UMAPolicy struct {
	IDP idp.Provider
}

func (p *UMAPolicy) Check(ctx context.Context, token, resource string) error {
	err := p.IDP.Tokens().Permission(ctx, token, resource)
	if errx.UpstreamStatus(err) == 403 {
		return errx.Forbidden("access denied")
	}
	return err
}

// NewAccessPolicy builds the policy named by kind.
func NewAccessPolicy(kind string, provider idp.Provider, allow Allowlist) (AccessPolicy, error) {
	switch strings.ToLower(kind) {
	case "", PolicyAllowlist:
		if len(allow) == 0 {
			allow = DefaultAllowlist()
		}
		return &AllowlistPolicy{IDP: provider, Allow: allow.Normalized()}, nil
	case PolicyUMA:
		return &UMAPolicy{IDP: provider}, nil
	default:
		return nil, fmt.Errorf("service: unknown access policy %q", kind)
	}
}

// AccessDecision is the answer to a successful validation.
type AccessDecision struct {
	Resource string
	Allowed  bool
}

type AccessService struct {
	Policy AccessPolicy
}

// Validate checks the caller's access to resource.
func (s *AccessService) Validate(ctx context.Context, token, resource string) (AccessDecision, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return AccessDecision{}, errx.Validation("resource is required")
	}

	err := opValidate.run(ctx, func(ctx context.Context) error {
		return s.Policy.Check(ctx, token, resource)
	})
	if err != nil {
		return AccessDecision{}, err
	}
	return AccessDecision{Resource: resource, Allowed: true}, nil
}
