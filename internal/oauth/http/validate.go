package http

import (
	"net/http"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/oauthsdk"
)

type AccessHandler struct {
	AccessService *service.AccessService

	errs httpx.Errors
}

// HandleValidate checks whether the caller may use a resource
//
//	@Summary		Validate access to a resource
//	@Description	Asks the configured access policy (role allow-list or Keycloak UMA) whether the bearer may use the resource.
//	@Tags			Access
//	@Produce		json
//	@Param			resource	query		string					true	"Resource name"
//	@Success		200			{object}	oauthsdk.AccessResponse	"Access granted"
//	@Failure		400			{object}	errx.Envelope			"Missing resource"
//	@Failure		401			{object}	errx.Envelope			"Missing or rejected bearer token"
//	@Failure		403			{object}	errx.Envelope			"Access denied"
//	@Security		BearerAuth
//	@Router			/auth/validate-token [get].
func (h *AccessHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	decision, err := h.AccessService.Validate(r.Context(), bearer(r), r.URL.Query().Get("resource"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, oauthsdk.AccessResponse{
		Resource: decision.Resource,
		Allowed:  decision.Allowed,
		Message:  "access granted",
	})
}
