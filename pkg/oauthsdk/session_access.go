package oauthsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ValidateAccess asks whether the session's user may use resource. A denial
// is returned as an *APIError with status 403.
func (s *Session) ValidateAccess(ctx context.Context, resource string) (*AccessResponse, error) {
	path := "/auth/validate-token?" + url.Values{"resource": {resource}}.Encode()

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var access AccessResponse
	if err := decodeJSON(resp, &access, http.StatusOK); err != nil {
		return nil, err
	}
	return &access, nil
}
