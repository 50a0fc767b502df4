// Package common contains shared constants and sentinel errors used across
// chathub components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerSchemePrefix is the expected prefix of the Authorization header
// value, including the trailing space.
const BearerSchemePrefix = "Bearer "
