package errx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/stretchr/testify/require"
)

var createUser = &errx.Policy{
	Name:     "create_user",
	Fallback: "failed to create user",
	Overrides: map[int]string{
		http.StatusConflict:     "user already exists",
		http.StatusUnauthorized: "invalid or expired token",
	},
}

func upstream(status int, body string) error {
	return errx.FromUpstream(errx.Upstream{
		Status: status,
		Method: http.MethodPost,
		URL:    "http://kc/admin/realms/r/users",
		Body:   []byte(body),
	}, nil)
}

func TestNormalizeUpstreamPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantDesc string
	}{
		{
			name:     "override wins over body",
			err:      errx.WithPolicy(upstream(409, `{"errorMessage":"User exists with same username"}`), createUser),
			wantCode: 409,
			wantDesc: "user already exists",
		},
		{
			name:     "error_description from body",
			err:      errx.WithPolicy(upstream(400, `{"error":"invalid_grant","error_description":"Invalid user credentials"}`), createUser),
			wantCode: 400,
			wantDesc: "identity provider: Invalid user credentials",
		},
		{
			name:     "errorMessage from body",
			err:      errx.WithPolicy(upstream(400, `{"errorMessage":"Password policy not met"}`), createUser),
			wantCode: 400,
			wantDesc: "identity provider: Password policy not met",
		},
		{
			name:     "error field as last json resort",
			err:      errx.WithPolicy(upstream(400, `{"error":"unknown_error"}`), createUser),
			wantCode: 400,
			wantDesc: "identity provider: unknown_error",
		},
		{
			name:     "plain text body",
			err:      errx.WithPolicy(upstream(502, "Bad Gateway"), createUser),
			wantCode: 502,
			wantDesc: "identity provider: Bad Gateway",
		},
		{
			name:     "html body falls to operation fallback",
			err:      errx.WithPolicy(upstream(502, "<html>oops</html>"), createUser),
			wantCode: 502,
			wantDesc: "failed to create user",
		},
		{
			name:     "empty body uses fallback",
			err:      errx.WithPolicy(upstream(503, ""), createUser),
			wantCode: 503,
			wantDesc: "failed to create user",
		},
		{
			name:     "no policy uses global default",
			err:      upstream(503, ""),
			wantCode: 503,
			wantDesc: errx.DefaultDescription,
		},
		{
			name: "network failure is 500",
			err: errx.WithPolicy(errx.FromUpstream(errx.Upstream{
				Method: http.MethodGet,
				URL:    "http://kc/admin/realms/r/users",
			}, errors.New("connection refused")), createUser),
			wantCode: 500,
			wantDesc: "failed to create user",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, env := errx.Normalizer{}.Normalize(tc.err)
			require.Equal(t, tc.wantCode, status)
			require.Equal(t, fmt.Sprintf("KC-%d", tc.wantCode), env.Code)
			require.Equal(t, tc.wantDesc, env.Description)
			require.Equal(t, errx.DefaultSource, env.Source)
			require.NotNil(t, env.Stack)
			require.Empty(t, env.Stack)
		})
	}
}

func TestNormalizeLocalKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantDesc string
		status   int
	}{
		{"validation", errx.Validation("username is required"), "OA-400", "username is required", 400},
		{"unauthenticated", errx.Unauthenticated(""), "OA-401", "missing or malformed bearer token", 401},
		{"forbidden", errx.Forbidden("access denied"), "OA-403", "access denied", 403},
		{"incomplete", errx.IncompleteData("user record is missing email"), "OA-500", "user record is missing email", 500},
		{"plain error", errors.New("boom"), "OA-500", "internal server error", 500},
		{"nil error", nil, "OA-500", "internal server error", 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, env := errx.Normalizer{Source: "Gateway"}.Normalize(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.wantCode, env.Code)
			require.Equal(t, tc.wantDesc, env.Description)
			require.Equal(t, "Gateway", env.Source)
		})
	}
}

func TestNormalizeLocalIgnoresPolicyOverrides(t *testing.T) {
	t.Parallel()

	err := errx.WithPolicy(errx.Validation("email is invalid"), createUser)
	status, env := errx.Normalizer{}.Normalize(err)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "email is invalid", env.Description)
}

func TestNormalizeDebugStack(t *testing.T) {
	t.Parallel()

	err := errx.WithPolicy(upstream(409, `{"errorMessage":"User exists"}`), createUser)

	_, env := errx.Normalizer{Debug: true}.Normalize(err)
	require.NotEmpty(t, env.Stack)

	raw, jerr := json.Marshal(env)
	require.NoError(t, jerr)
	require.Contains(t, string(raw), `"upstream_request_method":"POST"`)
	require.Contains(t, string(raw), `"upstream_response_status":409`)
	require.Contains(t, string(raw), "User exists")
}

func TestEnvelopeStackNeverNull(t *testing.T) {
	t.Parallel()

	_, env := errx.Normalizer{}.Normalize(errx.Validation("nope"))
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"error_stack":[]`)
}

func TestBodyDescription(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", errx.BodyDescription(nil))
	require.Equal(t, "", errx.BodyDescription([]byte(`{"field":"x"}`)))
	require.Equal(t, "", errx.BodyDescription([]byte(`["a"]`)))
	require.Equal(t, "first", errx.BodyDescription([]byte(`{"error":"third","errorMessage":"second","error_description":"first"}`)))

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	require.Len(t, errx.BodyDescription(long), 200)
}
