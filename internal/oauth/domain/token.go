package domain

// PasswordGrant is a resource-owner password exchange. ClientSecret is only
// filled in by the identity provider driver when the client is the one the
// gateway is configured for.
type PasswordGrant struct {
	ClientID string
	Username string
	Password string
}

// TokenSet is what the identity provider hands back on login or refresh. It
// is passed straight through, never stored.
type TokenSet struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64 // seconds
	RefreshExpiresIn int64 // seconds
}
