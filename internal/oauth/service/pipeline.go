package service

import (
	"context"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
)

type step func(ctx context.Context) error

// operation is one adapter operation. Its policy decides the wording of any
// upstream failure raised by its steps.
type operation struct {
	errx.Policy
}

// run executes steps strictly in order, each exactly once. There is no retry:
// a failed upstream write is reported, never replayed. A cancelled context
// stops the pipeline before the next step.
func (op *operation) run(ctx context.Context, steps ...step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return errx.WithPolicy(errx.Unexpected(err), &op.Policy)
		}
		if err := s(ctx); err != nil {
			return errx.WithPolicy(err, &op.Policy)
		}
	}
	return nil
}

func newOperation(name, fallback string, overrides map[int]string) *operation {
	merged := map[int]string{
		401: "invalid or expired token",
		403: "insufficient permissions",
	}
	for status, msg := range overrides {
		merged[status] = msg
	}
	return &operation{errx.Policy{Name: name, Fallback: fallback, Overrides: merged}}
}

var (
	opLogin = &operation{errx.Policy{
		Name:      "login",
		Fallback:  "failed to authenticate",
		Overrides: map[int]string{401: "invalid credentials"},
	}}
	opRefresh = &operation{errx.Policy{
		Name:      "refresh",
		Fallback:  "failed to refresh token",
		Overrides: map[int]string{400: "invalid or expired refresh token"},
	}}

	opCreateUser     = newOperation("create_user", "failed to create user", map[int]string{409: "user already exists"})
	opListUsers      = newOperation("list_users", "failed to list users", nil)
	opGetUser        = newOperation("get_user", "failed to fetch user", map[int]string{404: "user not found"})
	opUpdateUser     = newOperation("update_user", "failed to update user", map[int]string{404: "user not found", 409: "username or email already in use"})
	opChangePassword = newOperation("change_password", "failed to change password", map[int]string{404: "user not found"})
	opDisableUser    = newOperation("disable_user", "failed to disable user", map[int]string{404: "user not found"})
	opUserRoles      = newOperation("list_user_roles", "failed to list user roles", map[int]string{404: "user not found"})

	opCreateRole = newOperation("create_role", "failed to create role", map[int]string{409: "role already exists"})
	opListRoles  = newOperation("list_roles", "failed to list roles", nil)
	opGetRole    = newOperation("get_role", "failed to fetch role", map[int]string{404: "role not found"})
	opUpdateRole = newOperation("update_role", "failed to update role", map[int]string{404: "role not found", 409: "role name already in use"})
	opPatchRole  = newOperation("patch_role", "failed to update role", map[int]string{404: "role not found"})
	opDeleteRole = newOperation("delete_role", "failed to delete role", map[int]string{404: "role not found"})
	opAssignRole = newOperation("assign_role", "failed to assign role", map[int]string{404: "role or user not found"})
	opRemoveRole = newOperation("remove_role", "failed to remove role", map[int]string{404: "role or user not found"})

	opValidate = newOperation("validate_access", "failed to validate access", nil)
)
