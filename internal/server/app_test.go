package server

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "identity.db")
	c.HashCost = bcrypt.MinCost
	return c
}

func TestNewApp_WiresAccountService(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t), logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	acc, err := app.Accounts().CreateAccount(ctx, models.NewAccount{
		Email:    "a@example.com",
		Password: "secret123",
		Roles:    []string{"admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, acc.RoleLabels())

	pair, err := app.Accounts().Authenticate(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	claims, err := app.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims["account_id"])
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.RefreshTokenSecret = c.AccessTokenSecret

	_, err := NewApp(context.Background(), c, logging.Nop{})
	assert.True(t, errors.Is(err, common.ErrInvalidConfig), "got %v", err)
}

func TestNewApp_RejectsUnknownDSN(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDSN = "mysql://localhost/identity"

	_, err := NewApp(context.Background(), c, logging.Nop{})
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestRun_ReturnsListenError(t *testing.T) {
	c := testConfig(t)
	c.EndpointAddrGRPC = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Error(t, app.Run(context.Background()))
}
