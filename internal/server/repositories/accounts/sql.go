package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

const accountColumns = `id, email, username, first_name, last_name, created_at, updated_at`

// SQLRepository implements Repository over dbx.DBTX (satisfied by *sql.DB or
// *sql.Tx). The statements run unchanged on PostgreSQL and SQLite.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, acc *models.SecureAccount) error {
	query := `
		INSERT INTO accounts (id, email, username, first_name, last_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		acc.ID, acc.Email, nullString(acc.Username), nullString(acc.FirstName), nullString(acc.LastName),
		acc.PasswordHash, acc.CreatedAt, acc.UpdatedAt)
	if err != nil {
		return writeError(err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc := &models.Account{}
	if err := scanAccount(r.db.QueryRowContext(ctx, query, id), acc); err != nil {
		return nil, readError(err)
	}
	return acc, nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	acc := &models.Account{}
	if err := scanAccount(r.db.QueryRowContext(ctx, query, email), acc); err != nil {
		return nil, readError(err)
	}
	return acc, nil
}

func (r *SQLRepository) GetByEmailWithSecret(ctx context.Context, email string) (*models.SecureAccount, error) {
	query := `SELECT ` + accountColumns + `, password_hash FROM accounts WHERE email = $1`

	acc := &models.SecureAccount{}
	if err := scanAccount(r.db.QueryRowContext(ctx, query, email), &acc.Account, &acc.PasswordHash); err != nil {
		return nil, readError(err)
	}
	return acc, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		acc := &models.Account{}
		if err := scanAccount(rows, acc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) UpdateProfile(ctx context.Context, acc *models.Account) error {
	query := `
		UPDATE accounts SET username = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		nullString(acc.Username), nullString(acc.FirstName), nullString(acc.LastName), acc.UpdatedAt, acc.ID)
	if err != nil {
		return writeError(err)
	}
	return expectAffected(res)
}

func (r *SQLRepository) UpdatePasswordHash(ctx context.Context, id string, hash string, updatedAt time.Time) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, hash, updatedAt, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount reads accountColumns into acc, followed by any extra columns.
func scanAccount(s rowScanner, acc *models.Account, extra ...any) error {
	var username, firstName, lastName sql.NullString
	dest := append([]any{&acc.ID, &acc.Email, &username, &firstName, &lastName, &acc.CreatedAt, &acc.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	acc.Username = username.String
	acc.FirstName = firstName.String
	acc.LastName = lastName.String
	acc.CreatedAt = acc.CreatedAt.UTC()
	acc.UpdatedAt = acc.UpdatedAt.UTC()
	return nil
}

// nullString stores absent optional attributes as NULL so that the unique
// index on username ignores them.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func readError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func writeError(err error) error {
	if detail, ok := dbx.UniqueViolation(err); ok {
		return &common.UniquenessConflictError{Field: conflictField(detail)}
	}
	return fmt.Errorf("db error: %w", err)
}

// conflictField maps a constraint detail ("accounts_email_key" on PostgreSQL,
// "accounts.email" on SQLite) to the account attribute.
func conflictField(detail string) string {
	switch {
	case strings.Contains(detail, "username"):
		return "username"
	case strings.Contains(detail, "email"):
		return "email"
	default:
		return ""
	}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
