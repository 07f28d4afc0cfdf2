package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp"
)

type RoleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// PatchRoleRequest only touches the description. Nil leaves it as is.
type PatchRoleRequest struct {
	Description *string `json:"description"`
}

type RolesService struct {
	IDP idp.Provider
}

// Create creates a realm role and echoes what was sent.
func (s *RolesService) Create(ctx context.Context, token string, req RoleRequest) (domain.Role, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return domain.Role{}, err
	}

	role := domain.Role{Name: req.Name, Description: req.Description}
	err := opCreateRole.run(ctx, func(ctx context.Context) error {
		return s.IDP.Roles().Create(ctx, token, role)
	})
	return role, err
}

func (s *RolesService) List(ctx context.Context, token string) ([]domain.Role, error) {
	var roles []domain.Role
	err := opListRoles.run(ctx, func(ctx context.Context) (err error) {
		roles, err = s.IDP.Roles().List(ctx, token)
		return err
	})
	return roles, err
}

func (s *RolesService) Get(ctx context.Context, token, name string) (domain.Role, error) {
	var role domain.Role
	err := opGetRole.run(ctx, func(ctx context.Context) (err error) {
		role, err = s.IDP.Roles().Get(ctx, token, name)
		return err
	})
	return role, err
}

// Update replaces the role. An omitted name keeps the current one.
func (s *RolesService) Update(ctx context.Context, token, name string, req RoleRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		req.Name = name
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return err
	}

	return opUpdateRole.run(ctx, func(ctx context.Context) error {
		return s.IDP.Roles().Update(ctx, token, name, domain.Role{Name: req.Name, Description: req.Description})
	})
}

// Patch is a read-modify-write of the description that keeps id and name.
func (s *RolesService) Patch(ctx context.Context, token, name string, req PatchRoleRequest) error {
	var current domain.Role
	return opPatchRole.run(ctx,
		func(ctx context.Context) (err error) {
			current, err = s.IDP.Roles().Get(ctx, token, name)
			return err
		},
		func(ctx context.Context) error {
			next := current
			if req.Description != nil {
				next.Description = *req.Description
			}
			return s.IDP.Roles().Update(ctx, token, name, next)
		},
	)
}

func (s *RolesService) Delete(ctx context.Context, token, name string) error {
	return opDeleteRole.run(ctx, func(ctx context.Context) error {
		return s.IDP.Roles().Delete(ctx, token, name)
	})
}

// Assign maps the named realm role onto the user.
func (s *RolesService) Assign(ctx context.Context, token, name, userID string) error {
	var role domain.Role
	return opAssignRole.run(ctx,
		func(ctx context.Context) (err error) {
			role, err = s.IDP.Roles().Get(ctx, token, name)
			return err
		},
		func(ctx context.Context) error {
			return s.IDP.Users().AddRealmRoles(ctx, token, userID, []domain.Role{role})
		},
	)
}

// Remove drops the named realm role from the user.
func (s *RolesService) Remove(ctx context.Context, token, name, userID string) error {
	var role domain.Role
	return opRemoveRole.run(ctx,
		func(ctx context.Context) (err error) {
			role, err = s.IDP.Roles().Get(ctx, token, name)
			return err
		},
		func(ctx context.Context) error {
			return s.IDP.Users().RemoveRealmRoles(ctx, token, userID, []domain.Role{role})
		},
	)
}
