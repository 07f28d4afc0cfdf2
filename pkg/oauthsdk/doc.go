/*
Package oauthsdk provides a client SDK for the Keycloak OAuth gateway.

# SDKClient vs Session

  - SDKClient: public operations (login, refresh, health) and session creation
  - Session: bearer operations with automatic token refresh

Create an SDKClient and log in to obtain a Session:

	client := oauthsdk.NewSDKClient("http://localhost:8080")

	session, err := client.AuthenticateWithPassword(ctx, "oauth", "alice", "secret")

	users, err := session.ListUsers(ctx, nil)

	access, err := session.ValidateAccess(ctx, "rooms")

# Errors

Every failing route answers with the same envelope. It is returned as an
*APIError:

	_, err := session.GetUser(ctx, "missing")
	if oauthsdk.IsNotFound(err) {
		// ...
	}

	var apiErr *oauthsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Upstream() {
		// Keycloak rejected the call (error_code KC-<status>)
	}
*/
package oauthsdk
