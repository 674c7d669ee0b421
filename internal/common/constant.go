// Package common contains shared constants and sentinel errors used across
// Lirra components.
package common

// AuthorizationHeaderName carries the bearer access token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// WebhookSignatureHeaderName carries the hex HMAC-SHA256 of a payment webhook body.
const WebhookSignatureHeaderName = "X-Lirra-Signature"
