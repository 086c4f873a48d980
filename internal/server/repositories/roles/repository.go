// Package roles stores the role labels attached to accounts.
package roles

import (
	"context"

	"github.com/dmitrijs2005/identity/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, role *models.Role) error
	// Add inserts role unless the account already has its label and reports
	// whether a row was written.
	Add(ctx context.Context, role *models.Role) (bool, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Role, error)
	DeleteByAccount(ctx context.Context, accountID string) error
}
