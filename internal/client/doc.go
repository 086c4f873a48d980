// Package client is a Go client for IdentityService.
//
// Client keeps the token pair returned by Login, attaches the access token to
// every protected call and, when the server reports it expired, rotates the
// pair once through RefreshTokens and retries the call.
//
// Errors are mapped to sentinels callers can match with errors.Is:
// ErrUnavailable, ErrUnauthorized, common.ErrAccountExists,
// common.ErrValidation and common.ErrorNotFound.
package client
