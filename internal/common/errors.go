package common

import (
	"errors"
	"fmt"
)

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// kinds of failures surfaced by the account core, matched with errors.Is
	ErrValidation    = errors.New("validation error")
	ErrAccountExists = errors.New("account already exists")
	ErrHashing       = errors.New("password hashing error")
	ErrInvalidToken  = errors.New("invalid token")
	ErrStorage       = errors.New("storage fault")
	ErrInvalidConfig = errors.New("invalid configuration")

	// refresh rotation
	ErrRefreshTokenReuse = errors.New("refresh token does not match the stored record")

	// reasons carried by InvalidTokenError
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenBadSignature = errors.New("token signature is invalid")
)

// ValidationError reports a malformed or out-of-range account field.
type ValidationError struct {
	Field string
	Rule  string
}

func NewValidationError(field, rule string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UniquenessConflictError reports a duplicate email or username.
// Field is empty when the conflicting column is not disclosed.
type UniquenessConflictError struct {
	Field string
}

func (e *UniquenessConflictError) Error() string {
	if e.Field == "" {
		return ErrAccountExists.Error()
	}
	return fmt.Sprintf("%s: %s already in use", ErrAccountExists.Error(), e.Field)
}

func (e *UniquenessConflictError) Is(target error) bool {
	return target == ErrAccountExists
}

// HashingError wraps a failure to produce or evaluate a password hash.
type HashingError struct {
	Err error
}

func (e *HashingError) Error() string {
	return fmt.Sprintf("%s: %v", ErrHashing.Error(), e.Err)
}

func (e *HashingError) Unwrap() error { return e.Err }

func (e *HashingError) Is(target error) bool {
	return target == ErrHashing
}

// InvalidTokenError is returned when a token cannot be verified. Reason is one
// of ErrTokenMalformed, ErrTokenExpired or ErrTokenBadSignature.
type InvalidTokenError struct {
	Reason error
	Err    error
}

func (e *InvalidTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", ErrInvalidToken.Error(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrInvalidToken.Error(), e.Reason)
}

func (e *InvalidTokenError) Unwrap() error { return e.Reason }

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// StorageError is an opaque persistence failure. The transaction it occurred
// in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
