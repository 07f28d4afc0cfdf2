package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService

	errs httpx.Errors
}

// HandleList lists users
//
//	@Summary		List users
//	@Description	Lists realm users. Records Keycloak returns without a required field are left out.
//	@Tags			Users
//	@Produce		json
//	@Param			enabled	query		bool			false	"Filter on the enabled flag"
//	@Success		200		{array}		oauthsdk.User	"Users"
//	@Failure		400		{object}	errx.Envelope	"Invalid enabled filter"
//	@Failure		401		{object}	errx.Envelope	"Missing or rejected bearer token"
//	@Failure		403		{object}	errx.Envelope	"Insufficient permissions"
//	@Security		BearerAuth
//	@Router			/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var enabled *bool
	if raw := r.URL.Query().Get("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.errs.Write(w, r, errx.Validation("enabled must be true or false"))
			return
		}
		enabled = &v
	}

	users, err := h.UserService.List(r.Context(), bearer(r), enabled)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	response := make([]oauthsdk.User, len(users))
	for i, u := range users {
		response[i] = userResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleGet fetches one user
//
//	@Summary		Get a user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string			true	"User id"
//	@Success		200	{object}	oauthsdk.User	"User"
//	@Failure		401	{object}	errx.Envelope	"Missing or rejected bearer token"
//	@Failure		404	{object}	errx.Envelope	"User not found"
//	@Failure		500	{object}	errx.Envelope	"Incomplete record from the identity provider"
//	@Security		BearerAuth
//	@Router			/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), bearer(r), r.PathValue("id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

// HandleCreate creates a user
//
//	@Summary		Create a user
//	@Description	Creates an enabled user with a permanent password and returns it as stored. first-name and last-name may also be spelled firstName and lastName.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		oauthsdk.CreateUserRequest	true	"New user"
//	@Success		201		{object}	oauthsdk.User				"Created user"
//	@Failure		400		{object}	errx.Envelope				"Missing field or invalid email"
//	@Failure		401		{object}	errx.Envelope				"Missing or rejected bearer token"
//	@Failure		409		{object}	errx.Envelope				"User already exists"
//	@Security		BearerAuth
//	@Router			/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	user, err := h.UserService.Create(ctx, bearer(r), service.CreateUserRequest{
		Username:  f.First("username"),
		Password:  f["password"],
		FirstName: f.First("first-name", "firstName"),
		LastName:  f.First("last-name", "lastName"),
		Email:     f.First("email"),
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("user created", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}

// HandleUpdate overlays the supplied fields on a user
//
//	@Summary		Update a user
//	@Description	Read-modify-write of first-name, last-name and email. At least one is required.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User id"
//	@Param			request	body		oauthsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	oauthsdk.User				"Updated user"
//	@Failure		400		{object}	errx.Envelope				"No field supplied or invalid email"
//	@Failure		404		{object}	errx.Envelope				"User not found"
//	@Failure		409		{object}	errx.Envelope				"Email already in use"
//	@Security		BearerAuth
//	@Router			/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	user, err := h.UserService.Update(r.Context(), bearer(r), r.PathValue("id"), service.UpdateUserRequest{
		FirstName: optional(f, "first-name", "firstName"),
		LastName:  optional(f, "last-name", "lastName"),
		Email:     optional(f, "email"),
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

// HandleChangePassword sets a new password
//
//	@Summary		Change a user's password
//	@Tags			Users
//	@Accept			json
//	@Param			id		path	string							true	"User id"
//	@Param			request	body	oauthsdk.ChangePasswordRequest	true	"New password"
//	@Success		200		"Password changed"
//	@Failure		400		{object}	errx.Envelope	"Missing password"
//	@Failure		404		{object}	errx.Envelope	"User not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [patch].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	err = h.UserService.ChangePassword(r.Context(), bearer(r), r.PathValue("id"), service.ChangePasswordRequest{
		Password: f["password"],
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDisable switches a user off
//
//	@Summary		Disable a user
//	@Description	Users are never removed. Disabling a disabled user is a no-op.
//	@Tags			Users
//	@Param			id	path	string	true	"User id"
//	@Success		204	"User disabled"
//	@Failure		404	{object}	errx.Envelope	"User not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.UserService.Disable(r.Context(), bearer(r), id); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user disabled", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRoles lists a user's realm roles
//
//	@Summary		List a user's roles
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string			true	"User id"
//	@Success		200	{array}		oauthsdk.Role	"Realm roles"
//	@Failure		404	{object}	errx.Envelope	"User not found"
//	@Security		BearerAuth
//	@Router			/users/{id}/roles [get].
func (h *UsersHandler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.UserService.Roles(r.Context(), bearer(r), r.PathValue("id"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rolesResponse(roles))
}

func userResponse(u domain.User) oauthsdk.User {
	return oauthsdk.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Enabled:   u.Enabled,
	}
}

// optional is nil when none of keys was sent.
func optional(f httpx.Fields, keys ...string) *string {
	if !f.Has(keys...) {
		return nil
	}
	v := f.First(keys...)
	return &v
}
