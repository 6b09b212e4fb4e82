// Package auth guards the operator endpoints of the health service.
//
// Two credential schemes are supported: static API keys presented in the
// X-API-Key header, and HMAC-signed JWTs presented as a bearer token.
// Authenticators can be chained with CompositeAuthenticator and mounted in
// front of any http.Handler with Middleware.
package auth
