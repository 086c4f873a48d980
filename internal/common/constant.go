// Package common contains shared constants, sentinel errors and typed errors
// used across the identity service components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"
