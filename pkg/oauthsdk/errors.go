package oauthsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
)

// APIError is a failed gateway response parsed from its error envelope.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int `json:"-"`

	// Code is OA-<status> for failures the gateway detected itself and
	// KC-<status> for failures reported by Keycloak
	Code string `json:"error_code"`

	// Description is a human readable message
	Description string `json:"error_description"`

	// Source names the service that produced the envelope
	Source string `json:"error_source"`

	// Stack holds debug detail when the gateway runs with ERROR_DEBUG
	Stack []any `json:"error_stack"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Upstream reports whether Keycloak produced the failure.
func (e *APIError) Upstream() bool {
	return strings.HasPrefix(e.Code, "KC-")
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 from the gateway.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsForbidden reports whether err is a 403 from the gateway.
func IsForbidden(err error) bool { return IsStatus(err, http.StatusForbidden) }

// parseErrorResponse turns a non-success response into an *APIError. Bodies
// that are not an envelope fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env errx.Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        env.Code,
			Description: env.Description,
			Source:      env.Source,
			Stack:       env.Stack,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        fmt.Sprintf("HTTP-%d", resp.StatusCode),
		Description: http.StatusText(resp.StatusCode),
	}
}
