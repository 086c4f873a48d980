// Package models defines the identity records persisted in the database and
// the validated inputs that create or change them.
package models

import "time"

// Account is the default projection of a stored account. It has no password
// field: the hash can only be read through SecureAccount.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Roles        []Role        `json:"roles"`
	RefreshToken *RefreshToken `json:"refresh_token,omitempty"`
}

// RoleLabels returns the labels of a's roles.
func (a *Account) RoleLabels() []string {
	labels := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		labels = append(labels, r.Label)
	}
	return labels
}

// SecureAccount is the with-secret projection, used only to check a password.
type SecureAccount struct {
	Account
	PasswordHash string `json:"-"`
}

// Role is a label attached to exactly one account.
type Role struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshToken is the single refresh-token record an account may own.
// Rotation replaces Token in place.
type RefreshToken struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
