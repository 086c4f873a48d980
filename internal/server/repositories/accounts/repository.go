// Package accounts declares the account repository contract and its SQL
// implementation.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Repository stores accounts. Reads come in two projections: the default one
// returns models.Account without the password hash, GetByEmailWithSecret
// returns models.SecureAccount and is reserved for credential checks.
type Repository interface {
	// Create inserts acc. A duplicate email or username yields a
	// *common.UniquenessConflictError naming the column.
	Create(ctx context.Context, acc *models.SecureAccount) error

	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByEmailWithSecret(ctx context.Context, email string) (*models.SecureAccount, error)
	List(ctx context.Context) ([]*models.Account, error)

	// UpdateProfile writes username, first/last name and updated_at of acc.
	UpdateProfile(ctx context.Context, acc *models.Account) error
	UpdatePasswordHash(ctx context.Context, id string, hash string, updatedAt time.Time) error

	// Delete removes the account row; child rows go with it.
	Delete(ctx context.Context, id string) error
}
