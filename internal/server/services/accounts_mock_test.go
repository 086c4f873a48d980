package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/dbx"
	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
	accountsrepo "github.com/dmitrijs2005/identity/internal/server/repositories/accounts"
	refreshtokensrepo "github.com/dmitrijs2005/identity/internal/server/repositories/refreshtokens"
	rolesrepo "github.com/dmitrijs2005/identity/internal/server/repositories/roles"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeAccountsRepo struct {
	accountsrepo.Repository
	created   []*models.SecureAccount
	createErr error
}

func (f *fakeAccountsRepo) Create(ctx context.Context, acc *models.SecureAccount) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, acc)
	return nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return &models.Account{ID: id, Email: "a@example.com"}, nil
}

type fakeRolesRepo struct {
	rolesrepo.Repository
	createErr error
	calls     int
	addCalls  int
	exists    bool
}

// Add behaves like INSERT ... ON CONFLICT DO NOTHING against a row that may
// already be there.
func (f *fakeRolesRepo) Add(ctx context.Context, role *models.Role) (bool, error) {
	f.addCalls++
	return !f.exists, nil
}

func (f *fakeRolesRepo) ListByAccount(ctx context.Context, accountID string) ([]models.Role, error) {
	return []models.Role{{AccountID: accountID, Label: "auditor"}}, nil
}

func (f *fakeRolesRepo) Create(ctx context.Context, role *models.Role) error {
	f.calls++
	return f.createErr
}

type fakeRefreshRepo struct {
	refreshtokensrepo.Repository
	createErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return f.createErr
}

func (f *fakeRefreshRepo) FindByAccount(ctx context.Context, accountID string) (*models.RefreshToken, error) {
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	r *fakeRolesRepo
	t *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository           { return m.a }
func (m *fakeRepoManager) Roles(db dbx.DBTX) rolesrepo.Repository                 { return m.r }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.t }

func newMockedService(t *testing.T, rm *fakeRepoManager) (*AccountService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher error: %v", err)
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}

	s := NewAccountService(db, rm, hasher, tokens, logging.Nop{}, &config.Config{})
	ids := 0
	s.newID = func() string { ids++; return fmt.Sprintf("id-%d", ids) }
	s.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s, mock
}

// --- tests ---

func TestCreateAccount_CommitsOnce(t *testing.T) {
	rm := &fakeRepoManager{a: &fakeAccountsRepo{}, r: &fakeRolesRepo{}, t: &fakeRefreshRepo{}}
	s, mock := newMockedService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	acc, err := s.CreateAccount(context.Background(), signup())
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	if acc.ID != "id-1" || acc.RefreshToken.ID != "id-2" || acc.Roles[0].ID != "id-3" || acc.Roles[1].ID != "id-4" {
		t.Fatalf("unexpected ids: %+v", acc)
	}
	if len(rm.a.created) != 1 || rm.a.created[0].PasswordHash == "" || rm.a.created[0].PasswordHash == "secret123" {
		t.Fatalf("account must be stored with a hash: %+v", rm.a.created)
	}
	if rm.r.calls != 2 {
		t.Fatalf("want 2 role inserts, got %d", rm.r.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateAccount_RollsBackOnChildFailure(t *testing.T) {
	tests := []struct {
		name string
		deps *fakeRepoManager
	}{
		{
			name: "role insert fails",
			deps: &fakeRepoManager{
				a: &fakeAccountsRepo{},
				r: &fakeRolesRepo{createErr: errors.New("db error: disk full")},
				t: &fakeRefreshRepo{},
			},
		},
		{
			name: "refresh record insert fails",
			deps: &fakeRepoManager{
				a: &fakeAccountsRepo{},
				r: &fakeRolesRepo{},
				t: &fakeRefreshRepo{createErr: errors.New("db error: disk full")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockedService(t, tt.deps)
			mock.ExpectBegin()
			mock.ExpectRollback()

			acc, err := s.CreateAccount(context.Background(), signup())
			if acc != nil {
				t.Fatalf("no account may be returned on failure: %+v", acc)
			}
			var se *common.StorageError
			if !errors.As(err, &se) || se.Op != "create account" {
				t.Fatalf("want StorageError for create account, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("sql expectations: %v", err)
			}
		})
	}
}

func TestCreateAccount_CommitFailure(t *testing.T) {
	rm := &fakeRepoManager{a: &fakeAccountsRepo{}, r: &fakeRolesRepo{}, t: &fakeRefreshRepo{}}
	s, mock := newMockedService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	_, err := s.CreateAccount(context.Background(), signup())
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("want storage fault, got %v", err)
	}
}

func TestCreateAccount_ConflictIsNotAStorageFault(t *testing.T) {
	rm := &fakeRepoManager{
		a: &fakeAccountsRepo{createErr: &common.UniquenessConflictError{Field: "email"}},
		r: &fakeRolesRepo{},
		t: &fakeRefreshRepo{},
	}
	s, mock := newMockedService(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.CreateAccount(context.Background(), signup())
	var conflict *common.UniquenessConflictError
	if !errors.As(err, &conflict) || conflict.Field != "" {
		t.Fatalf("want undisclosed conflict, got %v", err)
	}
	if errors.Is(err, common.ErrStorage) {
		t.Fatalf("conflict must not be reported as storage fault: %v", err)
	}
	if rm.r.calls != 0 {
		t.Fatalf("roles must not be inserted after a failed account insert")
	}
}

func TestAddRole_ExistingLabelCommitsWithoutError(t *testing.T) {
	for _, exists := range []bool{false, true} {
		rm := &fakeRepoManager{a: &fakeAccountsRepo{}, r: &fakeRolesRepo{exists: exists}, t: &fakeRefreshRepo{}}
		s, mock := newMockedService(t, rm)
		mock.ExpectBegin()
		mock.ExpectCommit()

		acc, err := s.AddRole(context.Background(), "acc-1", "auditor")
		if err != nil {
			t.Fatalf("exists=%v: AddRole error: %v", exists, err)
		}
		if rm.r.addCalls != 1 || rm.r.calls != 0 {
			t.Fatalf("exists=%v: want one conflict-tolerant insert, got add=%d create=%d", exists, rm.r.addCalls, rm.r.calls)
		}
		if got := acc.RoleLabels(); len(got) != 1 || got[0] != "auditor" {
			t.Fatalf("exists=%v: unexpected roles %v", exists, got)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
	}
}
