// Command identityctl creates accounts and issues tokens directly against the
// identity database. It reads the same configuration sources as the server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/identity/internal/cli"
	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server"
	"github.com/dmitrijs2005/identity/internal/server/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return cli.NewApp(app.Accounts(), os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
}
