package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/identity/internal/flagx"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/services"
)

// ErrUsage is returned for an unknown command or malformed flags.
var ErrUsage = errors.New("usage: identityctl <create|token> [flags]")

var (
	createFlags = []string{"-email", "-username", "-first", "-last", "-roles"}
	tokenFlags  = []string{"-email"}
)

// AccountService is the part of services.AccountService identityctl drives.
type AccountService interface {
	CreateAccount(ctx context.Context, in models.NewAccount) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (*services.TokenPair, error)
}

type App struct {
	accounts AccountService
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(as AccountService, in io.Reader, out io.Writer) *App {
	return &App{accounts: as, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0]. Flags that belong to the server
// configuration (-d, -w, ...) may be mixed in and are ignored here.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return a.create(ctx, flagx.FilterArgs(rest, createFlags))
	case "token":
		return a.token(ctx, flagx.FilterArgs(rest, tokenFlags))
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) create(ctx context.Context, args []string) error {
	var in models.NewAccount
	var roles string

	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.Username, "username", "", "optional username")
	fs.StringVar(&in.FirstName, "first", "", "optional first name")
	fs.StringVar(&in.LastName, "last", "", "optional last name")
	fs.StringVar(&roles, "roles", "", "comma-separated role labels")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	in.Roles = splitList(roles)

	if err := a.ensureEmail(&in.Email); err != nil {
		return err
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	in.Password = password

	acc, err := a.accounts.CreateAccount(ctx, in)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(acc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(out))
	return err
}

func (a *App) token(ctx context.Context, args []string) error {
	var email string

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&email, "email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := a.ensureEmail(&email); err != nil {
		return err
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	pair, err := a.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "access_token: %s\nrefresh_token: %s\n", pair.AccessToken, pair.RefreshToken)
	return err
}

// ensureEmail prompts for the email when it was not given as a flag.
func (a *App) ensureEmail(email *string) error {
	if *email != "" {
		return nil
	}
	v, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return fmt.Errorf("read email: %w", err)
	}
	*email = v
	return nil
}
