//go:build e2e

package oauth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

func TestRoleLifecycle(t *testing.T) {
	ctx := t.Context()
	admin := adminSession(t)

	name := uniqueName("tutor")
	created, err := admin.CreateRole(ctx, oauthsdk.RoleRequest{Name: name, Description: "Peer tutor"})
	require.NoError(t, err)
	require.Equal(t, name, created.Name)

	_, err = admin.CreateRole(ctx, oauthsdk.RoleRequest{Name: name})
	assertAPIError(t, err, http.StatusConflict, "KC-")

	roles, err := admin.ListRoles(ctx)
	require.NoError(t, err)
	require.Contains(t, roleNames(roles), name)

	require.NoError(t, admin.PatchRole(ctx, name, "Senior tutor"))
	role, err := admin.GetRole(ctx, name)
	require.NoError(t, err)
	require.Equal(t, "Senior tutor", role.Description)
	require.NotEmpty(t, role.ID)

	require.NoError(t, admin.UpdateRole(ctx, name, oauthsdk.RoleRequest{Description: "Tutor"}))
	role, err = admin.GetRole(ctx, name)
	require.NoError(t, err)
	require.Equal(t, name, role.Name, "blank name keeps the role name")
	require.Equal(t, "Tutor", role.Description)

	username := uniqueName("mentee")
	user, err := admin.CreateUser(ctx, oauthsdk.CreateUserRequest{
		Username: username, Password: "Mentee123!", FirstName: "Mia", LastName: "Mentee",
		Email: username + "@constrsw.local",
	})
	require.NoError(t, err)

	require.NoError(t, admin.AssignRole(ctx, name, user.ID))
	userRoles, err := admin.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Contains(t, roleNames(userRoles), name)

	require.NoError(t, admin.RemoveRole(ctx, name, user.ID))
	userRoles, err = admin.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.NotContains(t, roleNames(userRoles), name)

	require.NoError(t, admin.DeleteRole(ctx, name))
	_, err = admin.GetRole(ctx, name)
	require.True(t, oauthsdk.IsNotFound(err), "got %v", err)
}

func TestRoleMutationsForbiddenForProfessor(t *testing.T) {
	prof := performLogin(t, profUsername, profPassword)

	_, err := prof.CreateRole(t.Context(), oauthsdk.RoleRequest{Name: uniqueName("nope")})
	require.True(t, oauthsdk.IsForbidden(err), "got %v", err)
}

func roleNames(roles []oauthsdk.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}
