// Package session owns the signed-in state of the shell.
//
// A Session restores the stored token pair on start (InitializeAuth), signs
// users in and out, and tells subscribers when any of its flags change. Token
// issuing and refreshing is delegated to an Authenticator; LocalAuthenticator
// is the offline implementation used by the demo tenant.
package session
