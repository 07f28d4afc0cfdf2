package oauthsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListRoles lists the realm roles.
func (s *Session) ListRoles(ctx context.Context) ([]Role, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/roles", nil, nil)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if err := decodeJSON(resp, &roles, http.StatusOK); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches a role by name.
func (s *Session) GetRole(ctx context.Context, name string) (*Role, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, rolePath(name), nil, nil)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := decodeJSON(resp, &role, http.StatusOK); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole creates a realm role. The response echoes the request.
func (s *Session) CreateRole(ctx context.Context, req RoleRequest) (*Role, error) {
	resp, err := s.doJSON(ctx, http.MethodPost, "/roles", req)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := decodeJSON(resp, &role, http.StatusCreated); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole replaces the role.
func (s *Session) UpdateRole(ctx context.Context, name string, req RoleRequest) error {
	resp, err := s.doJSON(ctx, http.MethodPut, rolePath(name), req)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

// PatchRole changes only the description.
func (s *Session) PatchRole(ctx context.Context, name, description string) error {
	resp, err := s.doJSON(ctx, http.MethodPatch, rolePath(name), PatchRoleRequest{Description: description})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

func (s *Session) DeleteRole(ctx context.Context, name string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, rolePath(name), nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// AssignRole maps the role onto the user.
func (s *Session) AssignRole(ctx context.Context, name, userID string) error {
	return s.roleMapping(ctx, http.MethodPost, name, userID)
}

// RemoveRole drops the role from the user.
func (s *Session) RemoveRole(ctx context.Context, name, userID string) error {
	return s.roleMapping(ctx, http.MethodDelete, name, userID)
}

func (s *Session) roleMapping(ctx context.Context, method, name, userID string) error {
	resp, err := s.doAuthRequest(ctx, method, rolePath(name)+"/users/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

func rolePath(name string) string { return "/roles/" + url.PathEscape(name) }
