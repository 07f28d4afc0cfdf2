package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	kctest "github.com/aussiebroadwan/oauthgw/internal/oauth/idp/drivers/keycloak/keycloaktest"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/stretchr/testify/require"
)

func alice(id string, enabled bool) map[string]any {
	return map[string]any{
		"id":              id,
		"username":        "alice",
		"firstName":       "Alice",
		"lastName":        "Liddell",
		"email":           "alice@example.com",
		"enabled":         enabled,
		"requiredActions": []string{},
		"attributes":      map[string]any{"dept": []string{"cs"}},
	}
}

func serveUser(rec map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kctest.JSON(w, http.StatusOK, rec)
	}
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	req := CreateUserRequest{
		Username:  "alice",
		Password:  "pw",
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@example.com",
	}

	t.Run("fetches the id from location", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodPost, "/users", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", kc.URL+kctest.AdminPath("/users/abc-123"))
			w.WriteHeader(http.StatusCreated)
		})
		kc.HandleAdmin(http.MethodGet, "/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			kctest.JSON(w, http.StatusOK, alice(r.PathValue("id"), true))
		})
		svc := &UserService{IDP: kc.Provider(t)}

		u, err := svc.Create(context.Background(), "tok", req)
		require.NoError(t, err)
		require.Equal(t, "abc-123", u.ID)
		require.Equal(t, "Alice", u.FirstName)

		require.Equal(t, 1, kc.Count(http.MethodGet, kctest.AdminPath("/users/abc-123")))
		require.Len(t, kc.Calls(), 2)
	})

	t.Run("duplicate user", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodPost, "/users", func(w http.ResponseWriter, r *http.Request) {
			kctest.JSON(w, http.StatusConflict, map[string]string{"errorMessage": "User exists with same username"})
		})
		svc := &UserService{IDP: kc.Provider(t)}

		_, err := svc.Create(context.Background(), "tok", req)
		status, env := normalize(err)
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "KC-409", env.Code)
		require.Equal(t, "user already exists", env.Description)
		require.Len(t, kc.Calls(), 1)
	})

	t.Run("bad email never reaches upstream", func(t *testing.T) {
		kc := kctest.New(t)
		svc := &UserService{IDP: kc.Provider(t)}

		bad := req
		bad.Email = "not-an-email"
		_, err := svc.Create(context.Background(), "tok", bad)
		_, env := normalize(err)
		require.Equal(t, "OA-400", env.Code)
		require.Equal(t, "email must be a valid email address", env.Description)
		require.Empty(t, kc.Calls())
	})

	t.Run("incomplete follow up record", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodPost, "/users", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", "/admin/realms/test/users/abc")
			w.WriteHeader(http.StatusCreated)
		})
		kc.HandleAdmin(http.MethodGet, "/users/{id}", serveUser(map[string]any{"id": "abc", "username": "alice"}))
		svc := &UserService{IDP: kc.Provider(t)}

		_, err := svc.Create(context.Background(), "tok", req)
		status, env := normalize(err)
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "OA-500", env.Code)
		require.Contains(t, env.Description, "firstName")
	})
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	kc.HandleAdmin(http.MethodGet, "/users", func(w http.ResponseWriter, r *http.Request) {
		kctest.JSON(w, http.StatusOK, []map[string]any{
			alice("1", true),
			{"id": "2", "username": "service-account-oauth", "enabled": true},
			alice("3", true),
		})
	})
	svc := &UserService{IDP: kc.Provider(t)}

	users, err := svc.List(context.Background(), "tok", nil)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "1", users[0].ID)
	require.Equal(t, "3", users[1].ID)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodGet, "/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			kctest.JSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		})
		svc := &UserService{IDP: kc.Provider(t)}

		_, err := svc.Get(context.Background(), "tok", "nope")
		status, env := normalize(err)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "user not found", env.Description)
	})

	t.Run("unmappable is fatal", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodGet, "/users/{id}", serveUser(map[string]any{"id": "x"}))
		svc := &UserService{IDP: kc.Provider(t)}

		_, err := svc.Get(context.Background(), "tok", "x")
		require.Equal(t, errx.KindIncompleteData, errx.KindOf(err))
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("needs at least one field", func(t *testing.T) {
		kc := kctest.New(t)
		svc := &UserService{IDP: kc.Provider(t)}

		blank := "  "
		_, err := svc.Update(context.Background(), "tok", "1", UpdateUserRequest{FirstName: &blank})
		require.Equal(t, errx.KindValidation, errx.KindOf(err))
		require.Empty(t, kc.Calls())
	})

	t.Run("merges and strips protected fields", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodGet, "/users/{id}", serveUser(alice("1", true)))
		kc.HandleAdmin(http.MethodPut, "/users/{id}", kctest.Status(http.StatusNoContent))
		svc := &UserService{IDP: kc.Provider(t)}

		email := "new@example.com"
		u, err := svc.Update(context.Background(), "tok", "1", UpdateUserRequest{Email: &email})
		require.NoError(t, err)
		require.Equal(t, "1", u.ID)
		require.Equal(t, email, u.Email)

		var puts []kctest.Call
		for _, c := range kc.Calls() {
			if c.Method == http.MethodPut {
				puts = append(puts, c)
			}
		}
		require.Len(t, puts, 1)

		var sent map[string]any
		require.NoError(t, json.Unmarshal(puts[0].Body, &sent))
		require.Equal(t, email, sent["email"])
		require.Equal(t, "Alice", sent["firstName"])
		require.Contains(t, sent, "attributes")
		require.NotContains(t, sent, "id")
		require.NotContains(t, sent, "requiredActions")
		require.NotContains(t, sent, "credentials")
	})

	t.Run("invalid email", func(t *testing.T) {
		kc := kctest.New(t)
		svc := &UserService{IDP: kc.Provider(t)}

		email := "nope"
		_, err := svc.Update(context.Background(), "tok", "1", UpdateUserRequest{Email: &email})
		require.Equal(t, errx.KindValidation, errx.KindOf(err))
		require.Empty(t, kc.Calls())
	})
}

func TestDisableUser(t *testing.T) {
	t.Parallel()

	t.Run("already disabled writes nothing", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodGet, "/users/{id}", serveUser(alice("1", false)))
		svc := &UserService{IDP: kc.Provider(t)}

		require.NoError(t, svc.Disable(context.Background(), "tok", "1"))
		require.Equal(t, 0, kc.Count(http.MethodPut, kctest.AdminPath("/users/1")))
	})

	t.Run("enabled user is switched off", func(t *testing.T) {
		kc := kctest.New(t)
		kc.HandleAdmin(http.MethodGet, "/users/{id}", serveUser(alice("1", true)))
		kc.HandleAdmin(http.MethodPut, "/users/{id}", kctest.Status(http.StatusNoContent))
		svc := &UserService{IDP: kc.Provider(t)}

		require.NoError(t, svc.Disable(context.Background(), "tok", "1"))
		require.Equal(t, 1, kc.Count(http.MethodPut, kctest.AdminPath("/users/1")))

		var sent domain.UserRecord
		require.NoError(t, json.Unmarshal(kc.Calls()[1].Body, &sent))
		require.Equal(t, false, sent["enabled"])
		require.NotContains(t, sent, "id")
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	kc := kctest.New(t)
	svc := &UserService{IDP: kc.Provider(t)}

	err := svc.ChangePassword(context.Background(), "tok", "1", ChangePasswordRequest{})
	_, env := normalize(err)
	require.Equal(t, "password is required", env.Description)
	require.Empty(t, kc.Calls())
}
