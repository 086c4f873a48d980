// Package services contains server-side business logic. This file implements
// AccountService: atomic account creation, the two read projections,
// credential checks and the access/refresh token lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Claim keys carried by issued tokens.
const (
	ClaimEmail     = "email"
	ClaimAccountID = "account_id"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService owns every write to the identity schema. It keeps no mutable
// state between calls; each operation is its own unit of work.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenService
	log         logging.Logger

	revealConflictField bool

	now   func() time.Time
	newID func() string

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService constructs an AccountService. Only RevealConflictField is
// read from cfg; the hasher and token service are built by the caller.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens *auth.TokenService, log logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                  db,
		repomanager:         m,
		hasher:              hasher,
		tokens:              tokens,
		log:                 log.With("module", "accounts"),
		revealConflictField: cfg.RevealConflictField,
		now:                 time.Now,
		newID:               uuid.NewString,
	}
}

// CreateAccount validates in, hashes the password once and then inserts the
// account, its refresh-token record (if in.RefreshToken is set) and one role
// per label in a single transaction. Any failure leaves nothing behind.
func (s *AccountService) CreateAccount(ctx context.Context, in models.NewAccount) (*models.Account, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	acc := &models.SecureAccount{
		Account: models.Account{
			ID:        s.newID(),
			Email:     in.Email,
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			CreatedAt: now,
			UpdatedAt: now,
			Roles:     make([]models.Role, 0, len(in.Roles)),
		},
		PasswordHash: hash,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Create(ctx, acc); err != nil {
			return err
		}

		if in.RefreshToken != "" {
			rt := &models.RefreshToken{
				ID:        s.newID(),
				AccountID: acc.ID,
				Token:     in.RefreshToken,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.repomanager.RefreshTokens(tx).Create(ctx, rt); err != nil {
				return err
			}
			acc.RefreshToken = rt
		}

		roles := s.repomanager.Roles(tx)
		for _, label := range in.Roles {
			role := models.Role{ID: s.newID(), AccountID: acc.ID, Label: label, CreatedAt: now}
			if err := roles.Create(ctx, &role); err != nil {
				return err
			}
			acc.Roles = append(acc.Roles, role)
		}
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "create account", err)
	}

	s.log.Info(ctx, "account created", "account_id", acc.ID, "roles", len(acc.Roles))
	return &acc.Account, nil
}

// GetAccount returns the default projection of the account with its roles
// and refresh-token record.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError(ctx, "get account", err)
	}
	if err := s.loadRelations(ctx, s.db, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccountByEmail is GetAccount keyed by email.
func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, s.storageError(ctx, "get account", err)
	}
	if err := s.loadRelations(ctx, s.db, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	list, err := s.repomanager.Accounts(s.db).List(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list accounts", err)
	}
	for _, acc := range list {
		if err := s.loadRelations(ctx, s.db, acc); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// GetAccountWithSecret returns the with-secret projection. It exists for the
// credential check path only.
func (s *AccountService) GetAccountWithSecret(ctx context.Context, email string) (*models.SecureAccount, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByEmailWithSecret(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, s.storageError(ctx, "get account", err)
	}
	if err := s.loadRelations(ctx, s.db, &acc.Account); err != nil {
		return nil, err
	}
	return acc, nil
}

// VerifyPassword checks plaintext against a stored hash.
func (s *AccountService) VerifyPassword(plaintext, hash string) (bool, error) {
	return s.hasher.Verify(plaintext, hash)
}

// Authenticate checks the credentials and, on success, issues a token pair
// and replaces the account's refresh-token record with the new refresh token.
// Unknown emails and wrong passwords both yield common.ErrorUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByEmailWithSecret(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same bcrypt work as for a known account
			_, _ = s.hasher.Verify(password, s.dummyPasswordHash())
			s.log.Warn(ctx, "authentication failed", "reason", "unknown email")
			return nil, common.ErrorUnauthorized
		}
		return nil, s.storageError(ctx, "authenticate", err)
	}

	ok, err := s.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash is unusable", "account_id", acc.ID)
		return nil, err
	}
	if !ok {
		s.log.Warn(ctx, "authentication failed", "account_id", acc.ID, "reason", "password mismatch")
		return nil, common.ErrorUnauthorized
	}

	var rehash string
	if s.hasher.NeedsRehash(acc.PasswordHash) {
		if rehash, err = s.hasher.Hash(password); err != nil {
			return nil, err
		}
	}

	pair, err := s.issueTokenPair(&acc.Account)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rt := &models.RefreshToken{
			ID:        s.newID(),
			AccountID: acc.ID,
			Token:     pair.RefreshToken,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repomanager.RefreshTokens(tx).Upsert(ctx, rt); err != nil {
			return err
		}
		if rehash != "" {
			return s.repomanager.Accounts(tx).UpdatePasswordHash(ctx, acc.ID, rehash, now)
		}
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "authenticate", err)
	}

	s.log.Info(ctx, "account authenticated", "account_id", acc.ID, "rehashed", rehash != "")
	return pair, nil
}

// RefreshTokens verifies refreshToken, requires it to be the account's stored
// record and rotates the record to a newly issued pair. A verified token that
// no longer matches the record is rejected as reuse.
func (s *AccountService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	accountID, _ := claims[ClaimAccountID].(string)
	if accountID == "" {
		return nil, &common.InvalidTokenError{Reason: common.ErrTokenMalformed, Err: errors.New("missing account_id claim")}
	}

	acc, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.storageError(ctx, "refresh tokens", err)
	}

	pair, err := s.issueTokenPair(acc)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.RefreshTokens(tx).Rotate(ctx, acc.ID, refreshToken, pair.RefreshToken, now)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "refresh token reuse", "account_id", acc.ID)
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrRefreshTokenReuse)
		}
		return nil, s.storageError(ctx, "refresh tokens", err)
	}
	return pair, nil
}

// ChangePassword replaces the password hash and revokes the refresh-token
// record, so existing sessions must authenticate again.
func (s *AccountService) ChangePassword(ctx context.Context, id, newPassword string) error {
	if err := models.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	now := s.timestamp()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).UpdatePasswordHash(ctx, id, hash, now); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteByAccount(ctx, id)
	})
	if err != nil {
		return s.storageError(ctx, "change password", err)
	}

	s.log.Info(ctx, "password changed", "account_id", id)
	return nil
}

// UpdateProfile applies upd to the account. Uniqueness conflicts on username
// are reported like they are on creation.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Account, error) {
	upd.Normalize()
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		acc, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		upd.Apply(acc)
		acc.UpdatedAt = s.timestamp()
		return repo.UpdateProfile(ctx, acc)
	})
	if err != nil {
		return nil, s.storageError(ctx, "update profile", err)
	}

	return s.GetAccount(ctx, id)
}

// AddRole attaches label to an existing account. Adding a label the account
// already has is a no-op, also when two calls race for the same label.
func (s *AccountService) AddRole(ctx context.Context, id, label string) (*models.Account, error) {
	label = strings.TrimSpace(label)
	if err := models.ValidateRoleLabel(label); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).GetByID(ctx, id); err != nil {
			return err
		}

		added, err := s.repomanager.Roles(tx).Add(ctx, &models.Role{ID: s.newID(), AccountID: id, Label: label, CreatedAt: s.timestamp()})
		if err != nil {
			return err
		}
		if !added {
			s.log.Debug(ctx, "role already assigned", "account_id", id, "role", label)
		}
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "add role", err)
	}

	return s.GetAccount(ctx, id)
}

// DeleteAccount removes the account together with its roles and its
// refresh-token record.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Roles(tx).DeleteByAccount(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByAccount(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Accounts(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.storageError(ctx, "delete account", err)
	}

	s.log.Info(ctx, "account deleted", "account_id", id)
	return nil
}

// --- helpers below ---

func (s *AccountService) loadRelations(ctx context.Context, db dbx.DBTX, acc *models.Account) error {
	roles, err := s.repomanager.Roles(db).ListByAccount(ctx, acc.ID)
	if err != nil {
		return s.storageError(ctx, "load roles", err)
	}
	acc.Roles = roles

	rt, err := s.repomanager.RefreshTokens(db).FindByAccount(ctx, acc.ID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		acc.RefreshToken = nil
	case err != nil:
		return s.storageError(ctx, "load refresh token", err)
	default:
		acc.RefreshToken = rt
	}
	return nil
}

func (s *AccountService) issueTokenPair(acc *models.Account) (*TokenPair, error) {
	claims := auth.Claims{ClaimEmail: acc.Email, ClaimAccountID: acc.ID}

	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// timestamp is the service clock at the precision both backends store.
func (s *AccountService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *AccountService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("identity-timing-equaliser")
	})
	return s.dummyHash
}

// storageError classifies a repository or transaction failure. Not-found and
// uniqueness conflicts keep their identity; everything else becomes an opaque
// StorageError.
func (s *AccountService) storageError(ctx context.Context, op string, err error) error {
	var conflict *common.UniquenessConflictError
	switch {
	case errors.As(err, &conflict):
		if s.revealConflictField {
			return conflict
		}
		return &common.UniquenessConflictError{}
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	}

	s.log.Error(ctx, "storage fault", "op", op, "error", err)
	return common.NewStorageError(op, err)
}
