// Package client talks to the Lirra admin API over HTTP.
//
// HTTPClient logs in with email and password (or uses a preset access
// token), sends admin management actions and transparently refreshes an
// expired access token once per request when a refresh token is known.
//
// Transport failures are reported as ErrUnavailable. Error responses become
// *APIError, which matches ErrUnauthorized and ErrForbidden with errors.Is.
package client
