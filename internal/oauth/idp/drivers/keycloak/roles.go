package keycloak

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
)

// roleRep is the subset of a Keycloak RoleRepresentation the gateway uses.
type roleRep struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// roleRef is what role-mapping endpoints take.
type roleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rolesRepo struct {
	p *Provider
}

func (r *rolesRepo) List(ctx context.Context, token string) ([]domain.Role, error) {
	var reps []roleRep
	if err := r.p.getJSON(ctx, r.p.admin("roles"), token, &reps); err != nil {
		return nil, err
	}
	return mapRoles(reps), nil
}

func (r *rolesRepo) Get(ctx context.Context, token, name string) (domain.Role, error) {
	var rep roleRep
	if err := r.p.getJSON(ctx, r.p.admin("roles", name), token, &rep); err != nil {
		return domain.Role{}, err
	}
	return mapRole(rep), nil
}

func (r *rolesRepo) Create(ctx context.Context, token string, role domain.Role) error {
	_, _, err := r.p.doJSON(ctx, http.MethodPost, r.p.admin("roles"), token, roleRep{
		Name:        role.Name,
		Description: role.Description,
	})
	return err
}

func (r *rolesRepo) Update(ctx context.Context, token, name string, role domain.Role) error {
	_, _, err := r.p.doJSON(ctx, http.MethodPut, r.p.admin("roles", name), token, roleRep{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
	})
	return err
}

func (r *rolesRepo) Delete(ctx context.Context, token, name string) error {
	_, _, err := r.p.doJSON(ctx, http.MethodDelete, r.p.admin("roles", name), token, nil)
	return err
}

func mapRole(rep roleRep) domain.Role {
	return domain.Role{ID: rep.ID, Name: rep.Name, Description: rep.Description}
}

func mapRoles(reps []roleRep) []domain.Role {
	roles := make([]domain.Role, len(reps))
	for i, rep := range reps {
		roles[i] = mapRole(rep)
	}
	return roles
}

func roleRefs(roles []domain.Role) []roleRef {
	refs := make([]roleRef, len(roles))
	for i, role := range roles {
		refs[i] = roleRef{ID: role.ID, Name: role.Name}
	}
	return refs
}
