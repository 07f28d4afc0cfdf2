package keycloak

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
)

type usersRepo struct {
	p *Provider
}

func (r *usersRepo) List(ctx context.Context, token string, enabled *bool) ([]domain.UserRecord, error) {
	u := r.p.admin("users")
	if enabled != nil {
		u += "?" + url.Values{"enabled": {strconv.FormatBool(*enabled)}}.Encode()
	}

	var recs []domain.UserRecord
	if err := r.p.getJSON(ctx, u, token, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *usersRepo) Get(ctx context.Context, token, id string) (domain.UserRecord, error) {
	var rec domain.UserRecord
	if err := r.p.getJSON(ctx, r.p.admin("users", id), token, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errx.IncompleteData("identity provider returned an empty user record")
	}
	return rec, nil
}

// Create posts rec and reads the new id from the Location header
// (.../users/{id}); Keycloak answers 201 with no body.
func (r *usersRepo) Create(ctx context.Context, token string, rec domain.UserRecord) (string, error) {
	resp, _, err := r.p.doJSON(ctx, http.MethodPost, r.p.admin("users"), token, rec)
	if err != nil {
		return "", err
	}

	id := idFromLocation(resp.Header.Get("Location"))
	if id == "" {
		return "", errx.IncompleteData("identity provider did not return the new user location")
	}
	return id, nil
}

func idFromLocation(loc string) string {
	if loc == "" {
		return ""
	}
	u, err := url.Parse(loc)
	if err != nil {
		return ""
	}
	id := path.Base(u.Path)
	if id == "." || id == "/" || id == "users" {
		return ""
	}
	return id
}

func (r *usersRepo) Update(ctx context.Context, token, id string, rec domain.UserRecord) error {
	_, _, err := r.p.doJSON(ctx, http.MethodPut, r.p.admin("users", id), token, rec)
	return err
}

func (r *usersRepo) ResetPassword(ctx context.Context, token, id, password string) error {
	cred := map[string]any{
		"type":      "password",
		"value":     password,
		"temporary": false,
	}
	_, _, err := r.p.doJSON(ctx, http.MethodPut, r.p.admin("users", id, "reset-password"), token, cred)
	return err
}

func (r *usersRepo) RealmRoles(ctx context.Context, token, id string) ([]domain.Role, error) {
	var reps []roleRep
	if err := r.p.getJSON(ctx, r.p.admin("users", id, "role-mappings", "realm"), token, &reps); err != nil {
		return nil, err
	}
	return mapRoles(reps), nil
}

func (r *usersRepo) AddRealmRoles(ctx context.Context, token, id string, roles []domain.Role) error {
	_, _, err := r.p.doJSON(ctx, http.MethodPost, r.p.admin("users", id, "role-mappings", "realm"), token, roleRefs(roles))
	return err
}

func (r *usersRepo) RemoveRealmRoles(ctx context.Context, token, id string, roles []domain.Role) error {
	_, _, err := r.p.doJSON(ctx, http.MethodDelete, r.p.admin("users", id, "role-mappings", "realm"), token, roleRefs(roles))
	return err
}
