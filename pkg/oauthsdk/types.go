package oauthsdk

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned by POST /login and POST /refresh.
type TokenResponse struct {
	// AccessToken is the Keycloak access token used as the bearer on every other route
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged for a new token set on POST /refresh
	RefreshToken string `json:"refresh_token"`

	// TokenType is "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`

	// RefreshExpiresIn is the refresh token lifetime in seconds
	RefreshExpiresIn int64 `json:"refresh_expires_in"`
}

// ============================================================================
// User Types
// ============================================================================

// User is the outward shape of an identity record.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first-name"`
	LastName  string `json:"last-name"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
}

// CreateUserRequest is the body of POST /users. The server also accepts
// firstName and lastName spellings.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first-name"`
	LastName  string `json:"last-name"`
	Email     string `json:"email"`
}

// UpdateUserRequest is the body of PUT /users/{id}. At least one field must
// be set.
type UpdateUserRequest struct {
	FirstName string `json:"first-name,omitempty"`
	LastName  string `json:"last-name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ChangePasswordRequest is the body of PATCH /users/{id}.
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ============================================================================
// Role Types
// ============================================================================

// Role is a Keycloak realm role. ID is omitted when the server echoes a create.
type Role struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleRequest is the body of POST /roles and PUT /roles/{name}.
type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PatchRoleRequest is the body of PATCH /roles/{name}.
type PatchRoleRequest struct {
	Description string `json:"description"`
}

// ============================================================================
// Access Types
// ============================================================================

// AccessResponse is returned by GET /auth/validate-token when access is granted.
type AccessResponse struct {
	Resource string `json:"resource"`
	Allowed  bool   `json:"allowed"`
	Message  string `json:"message"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports dependency status on /readyz.
type HealthChecks struct {
	// Keycloak is "ok" or an error message when the realm discovery document
	// cannot be fetched
	Keycloak string `json:"keycloak"`
}
