package oauthsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsers lists users. A non-nil enabled filters on the enabled flag.
func (s *Session) ListUsers(ctx context.Context, enabled *bool) ([]User, error) {
	path := "/users"
	if enabled != nil {
		path += "?enabled=" + strconv.FormatBool(*enabled)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user by id.
func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, userPath(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user and returns it as stored by Keycloak.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	resp, err := s.doJSON(ctx, http.MethodPost, "/users", req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser overlays the non-empty fields of req onto the user.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	resp, err := s.doJSON(ctx, http.MethodPut, userPath(id), req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword sets a new permanent password.
func (s *Session) ChangePassword(ctx context.Context, id, password string) error {
	resp, err := s.doJSON(ctx, http.MethodPatch, userPath(id), ChangePasswordRequest{Password: password})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

// DisableUser switches the user off. Users are never removed.
func (s *Session) DisableUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, userPath(id), nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// UserRoles lists the realm roles mapped to the user.
func (s *Session) UserRoles(ctx context.Context, id string) ([]Role, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, userPath(id)+"/roles", nil, nil)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if err := decodeJSON(resp, &roles, http.StatusOK); err != nil {
		return nil, err
	}
	return roles, nil
}

func userPath(id string) string { return "/users/" + url.PathEscape(id) }
