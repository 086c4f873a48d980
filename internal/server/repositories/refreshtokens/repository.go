// Package refreshtokens declares the repository contract for the single
// refresh-token record an account may own.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/identity/internal/server/models"
)

// Repository defines operations for storing, rotating and revoking refresh
// token records. Each account has at most one record.
type Repository interface {
	// Create inserts a record for an account that has none.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Upsert inserts the record or replaces the token of the existing one.
	Upsert(ctx context.Context, token *models.RefreshToken) error

	// FindByAccount returns the account's record or common.ErrorNotFound.
	FindByAccount(ctx context.Context, accountID string) (*models.RefreshToken, error)

	// Rotate replaces current with next only if current is still the stored
	// value. It returns common.ErrorNotFound when nothing matched.
	Rotate(ctx context.Context, accountID, current, next string, at time.Time) error

	// DeleteByAccount removes the account's record. Deleting a missing record
	// is not an error.
	DeleteByAccount(ctx context.Context, accountID string) error
}
