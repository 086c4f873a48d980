package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	created  models.NewAccount
	email    string
	password string
	err      error
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in models.NewAccount) (*models.Account, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	acc := &models.Account{ID: "acc-1", Email: in.Email, Username: in.Username}
	for _, l := range in.Roles {
		acc.Roles = append(acc.Roles, models.Role{Label: l})
	}
	return acc, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, password string) (*services.TokenPair, error) {
	f.email, f.password = email, password
	if f.err != nil {
		return nil, f.err
	}
	return &services.TokenPair{AccessToken: "acc-token", RefreshToken: "ref-token"}, nil
}

func newTestApp(fa *fakeAccounts, stdin string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return NewApp(fa, strings.NewReader(stdin), &out), &out
}

func TestRun_Create(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	fa := &fakeAccounts{}
	app, out := newTestApp(fa, "secret123\n")

	err := app.Run(context.Background(), []string{
		"create", "-email", "a@example.com", "-username", "alice",
		"-d", "file:ignored.db", "-roles", "admin,customer",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", fa.created.Email)
	assert.Equal(t, "alice", fa.created.Username)
	assert.Equal(t, "secret123", fa.created.Password)
	assert.Equal(t, []string{"admin", "customer"}, fa.created.Roles)

	var printed map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "acc-1", printed["id"])
	assert.NotContains(t, out.String(), "secret123")
}

func TestRun_CreatePromptsForEmail(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	fa := &fakeAccounts{}
	app, _ := newTestApp(fa, "b@example.com\nsecret123\n")

	require.NoError(t, app.Run(context.Background(), []string{"create"}))
	assert.Equal(t, "b@example.com", fa.created.Email)
	assert.Equal(t, "secret123", fa.created.Password)
	assert.Empty(t, fa.created.Roles)
}

func TestRun_CreateReportsServiceError(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	fa := &fakeAccounts{err: &common.UniquenessConflictError{}}
	app, _ := newTestApp(fa, "secret123\n")

	err := app.Run(context.Background(), []string{"create", "-email", "a@example.com"})
	assert.True(t, errors.Is(err, common.ErrAccountExists), "got %v", err)
}

func TestRun_Token(t *testing.T) {
	stubTerminal(t, true, []byte("secret123"), nil)
	fa := &fakeAccounts{}
	app, out := newTestApp(fa, "")

	require.NoError(t, app.Run(context.Background(), []string{"token", "-email=a@example.com"}))
	assert.Equal(t, "a@example.com", fa.email)
	assert.Equal(t, "secret123", fa.password)
	assert.Contains(t, out.String(), "access_token: acc-token\n")
	assert.Contains(t, out.String(), "refresh_token: ref-token\n")
}

func TestRun_TokenUnauthorized(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	fa := &fakeAccounts{err: common.ErrorUnauthorized}
	app, _ := newTestApp(fa, "wrong\n")

	err := app.Run(context.Background(), []string{"token", "-email", "a@example.com"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRun_Usage(t *testing.T) {
	app, out := newTestApp(&fakeAccounts{}, "")

	assert.ErrorIs(t, app.Run(context.Background(), nil), ErrUsage)
	assert.ErrorIs(t, app.Run(context.Background(), []string{"drop"}), ErrUsage)

	require.NoError(t, app.Run(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "identityctl")
}
