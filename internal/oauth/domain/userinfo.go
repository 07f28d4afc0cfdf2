package domain

// UserInfo is the caller's identity as reported by the userinfo endpoint.
type UserInfo struct {
	Subject  string
	Username string
	Email    string
	Roles    []string
}
