package http

import (
	"net/http"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

type RolesHandler struct {
	RolesService *service.RolesService

	errs httpx.Errors
}

// HandleList lists realm roles
//
//	@Summary		List roles
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{array}		oauthsdk.Role	"Realm roles"
//	@Failure		401	{object}	errx.Envelope	"Missing or rejected bearer token"
//	@Failure		403	{object}	errx.Envelope	"Insufficient permissions"
//	@Security		BearerAuth
//	@Router			/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.List(r.Context(), bearer(r))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rolesResponse(roles))
}

// HandleGet fetches a role by name
//
//	@Summary		Get a role
//	@Tags			Roles
//	@Produce		json
//	@Param			name	path		string			true	"Role name"
//	@Success		200		{object}	oauthsdk.Role	"Role"
//	@Failure		404		{object}	errx.Envelope	"Role not found"
//	@Security		BearerAuth
//	@Router			/roles/{name} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, err := h.RolesService.Get(r.Context(), bearer(r), r.PathValue("name"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, roleResponse(role))
}

// HandleCreate creates a realm role
//
//	@Summary		Create a role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		oauthsdk.RoleRequest	true	"New role"
//	@Success		201		{object}	oauthsdk.Role			"Created role"
//	@Failure		400		{object}	errx.Envelope			"Missing name"
//	@Failure		409		{object}	errx.Envelope			"Role already exists"
//	@Security		BearerAuth
//	@Router			/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	role, err := h.RolesService.Create(r.Context(), bearer(r), service.RoleRequest{
		Name:        f.First("name"),
		Description: f["description"],
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("role created", "role", role.Name)
	httpx.WriteJSON(w, http.StatusCreated, roleResponse(role))
}

// HandleUpdate replaces a role
//
//	@Summary		Update a role
//	@Description	Full update. An omitted name keeps the current one.
//	@Tags			Roles
//	@Accept			json
//	@Param			name	path	string					true	"Role name"
//	@Param			request	body	oauthsdk.RoleRequest	true	"Role"
//	@Success		200		"Role updated"
//	@Failure		404		{object}	errx.Envelope	"Role not found"
//	@Failure		409		{object}	errx.Envelope	"Role name already in use"
//	@Security		BearerAuth
//	@Router			/roles/{name} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	err = h.RolesService.Update(r.Context(), bearer(r), r.PathValue("name"), service.RoleRequest{
		Name:        f.First("name"),
		Description: f["description"],
	})
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandlePatch changes a role's description
//
//	@Summary		Patch a role
//	@Description	Only the description changes; id and name are kept.
//	@Tags			Roles
//	@Accept			json
//	@Param			name	path	string						true	"Role name"
//	@Param			request	body	oauthsdk.PatchRoleRequest	true	"New description"
//	@Success		200		"Role updated"
//	@Failure		404		{object}	errx.Envelope	"Role not found"
//	@Security		BearerAuth
//	@Router			/roles/{name} [patch].
func (h *RolesHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(w, r)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	var req service.PatchRoleRequest
	if f.Has("description") {
		desc := f["description"]
		req.Description = &desc
	}

	if err := h.RolesService.Patch(r.Context(), bearer(r), r.PathValue("name"), req); err != nil {
		h.errs.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDelete deletes a role
//
//	@Summary		Delete a role
//	@Tags			Roles
//	@Param			name	path	string	true	"Role name"
//	@Success		204		"Role deleted"
//	@Failure		404		{object}	errx.Envelope	"Role not found"
//	@Security		BearerAuth
//	@Router			/roles/{name} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.RolesService.Delete(r.Context(), bearer(r), name); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("role deleted", "role", name)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssign maps a role onto a user
//
//	@Summary		Assign a role to a user
//	@Tags			Roles
//	@Param			name	path	string	true	"Role name"
//	@Param			userId	path	string	true	"User id"
//	@Success		204		"Role assigned"
//	@Failure		404		{object}	errx.Envelope	"Role or user not found"
//	@Security		BearerAuth
//	@Router			/roles/{name}/users/{userId} [post].
func (h *RolesHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	name, userID := r.PathValue("name"), r.PathValue("userId")
	if err := h.RolesService.Assign(r.Context(), bearer(r), name, userID); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("role assigned", "role", name, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove drops a role from a user
//
//	@Summary		Remove a role from a user
//	@Tags			Roles
//	@Param			name	path	string	true	"Role name"
//	@Param			userId	path	string	true	"User id"
//	@Success		204		"Role removed"
//	@Failure		404		{object}	errx.Envelope	"Role or user not found"
//	@Security		BearerAuth
//	@Router			/roles/{name}/users/{userId} [delete].
func (h *RolesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	name, userID := r.PathValue("name"), r.PathValue("userId")
	if err := h.RolesService.Remove(r.Context(), bearer(r), name, userID); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("role removed", "role", name, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func roleResponse(role domain.Role) oauthsdk.Role {
	return oauthsdk.Role{ID: role.ID, Name: role.Name, Description: role.Description}
}

func rolesResponse(roles []domain.Role) []oauthsdk.Role {
	out := make([]oauthsdk.Role, len(roles))
	for i, role := range roles {
		out[i] = roleResponse(role)
	}
	return out
}
