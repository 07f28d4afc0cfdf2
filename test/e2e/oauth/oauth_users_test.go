//go:build e2e

package oauth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	ctx := t.Context()
	admin := adminSession(t)

	username := uniqueName("student")
	created, err := admin.CreateUser(ctx, oauthsdk.CreateUserRequest{
		Username:  username,
		Password:  "Student123!",
		FirstName: "Sam",
		LastName:  "Student",
		Email:     username + "@constrsw.local",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, username, created.Username)
	require.True(t, created.Enabled)

	fetched, err := admin.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, *created, *fetched)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := admin.CreateUser(ctx, oauthsdk.CreateUserRequest{
			Username: username, Password: "x", FirstName: "a", LastName: "b",
			Email: "other-" + username + "@constrsw.local",
		})
		assertAPIError(t, err, http.StatusConflict, "KC-")
	})

	t.Run("update merges fields", func(t *testing.T) {
		updated, err := admin.UpdateUser(ctx, created.ID, oauthsdk.UpdateUserRequest{FirstName: "Samantha"})
		require.NoError(t, err)
		require.Equal(t, "Samantha", updated.FirstName)
		require.Equal(t, "Student", updated.LastName)
	})

	t.Run("listed while enabled", func(t *testing.T) {
		enabled := true
		users, err := admin.ListUsers(ctx, &enabled)
		require.NoError(t, err)
		require.Contains(t, usernames(users), username)
	})

	t.Run("password change allows login", func(t *testing.T) {
		require.NoError(t, admin.ChangePassword(ctx, created.ID, "Changed123!"))
		performLogin(t, username, "Changed123!")
	})

	t.Run("disable blocks login", func(t *testing.T) {
		require.NoError(t, admin.DisableUser(ctx, created.ID))
		require.NoError(t, admin.DisableUser(ctx, created.ID), "disabling twice is harmless")

		user, err := admin.GetUser(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, user.Enabled)

		_, err = newClient().Login(ctx, clientID, username, "Changed123!")
		require.Error(t, err)
	})
}

func TestGetUnknownUser(t *testing.T) {
	admin := adminSession(t)

	_, err := admin.GetUser(t.Context(), "00000000-0000-0000-0000-000000000000")
	require.True(t, oauthsdk.IsNotFound(err), "got %v", err)
}

func TestCreateUserValidation(t *testing.T) {
	admin := adminSession(t)

	_, err := admin.CreateUser(t.Context(), oauthsdk.CreateUserRequest{Username: uniqueName("bad")})
	assertAPIError(t, err, http.StatusBadRequest, "OA-")
}

func usernames(users []oauthsdk.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}
