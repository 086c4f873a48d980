package roles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, account_id, label, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, role.ID, role.AccountID, role.Label, role.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Add(ctx context.Context, role *models.Role) (bool, error) {
	query := `
		INSERT INTO roles (id, account_id, label, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, label) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, role.ID, role.AccountID, role.Label, role.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Role, error) {
	query := `
		SELECT id, account_id, label, created_at
		FROM roles
		WHERE account_id = $1
		ORDER BY created_at, label
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.AccountID, &role.Label, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		role.CreatedAt = role.CreatedAt.UTC()
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM roles WHERE account_id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
