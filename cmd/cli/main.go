// Command cli is the operator tool of the finanze API: it mints bearer
// tokens, migrates the schema and captures snapshots on demand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/finanze/infra/initializer"
	"github.com/amirasaad/finanze/pkg/app"
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/service/auth"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]

Commands:
  token [user_id] [ttl]   mint a bearer token (new user id when omitted)
  migrate                 create or update the database schema
  snapshot                capture today's snapshot for every DCA user
  price                   print the current BTC quote`

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	keyColor  = color.New(color.FgCyan)
	warnColor = color.New(color.FgYellow)
)

func main() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err) //nolint:errcheck
		os.Exit(1)
	}
}

func run(cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "token":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return mintToken(auth.NewService(cfg.Auth.Jwt, slog.Default()), args, out)
	case "migrate":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.DB.AutoMigrate = true
		_, cleanup, err := initializer.InitializeDependencies(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		okColor.Fprintln(out, "Schema up to date") //nolint:errcheck
		return nil
	case "snapshot", "price":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		deps, cleanup, err := initializer.InitializeDependencies(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		a := app.New(deps, cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if cmd == "price" {
			return printQuote(ctx, a, out)
		}
		return captureSnapshots(ctx, a, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

// loadConfig reads the environment; when no JWT secret is configured and
// stdin is a terminal the secret is read without echo.
func loadConfig() (*config.App, error) {
	if os.Getenv("AUTH_JWT_SECRET") == "" {
		if _, err := config.FindEnvFile(".env"); err != nil && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprint(os.Stderr, "JWT secret: ") //nolint:errcheck
			secret, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr) //nolint:errcheck
			if err != nil {
				return nil, fmt.Errorf("failed to read secret: %w", err)
			}
			if err := os.Setenv("AUTH_JWT_SECRET", strings.TrimSpace(string(secret))); err != nil {
				return nil, err
			}
		}
	}
	return config.Load(".env")
}

func mintToken(svc *auth.Service, args []string, out io.Writer) error {
	userID := uuid.New()
	if len(args) > 0 && args[0] != "" {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		userID = id
	}
	var ttl time.Duration
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d <= 0 {
			return errors.New("ttl must be a positive duration such as 720h")
		}
		ttl = d
	}
	token, err := svc.GenerateToken(userID, ttl)
	if err != nil {
		return err
	}
	keyColor.Fprint(out, "user_id: ") //nolint:errcheck
	fmt.Fprintln(out, userID)         //nolint:errcheck
	keyColor.Fprint(out, "token:   ") //nolint:errcheck
	fmt.Fprintln(out, token)          //nolint:errcheck
	return nil
}

func printQuote(ctx context.Context, a *app.App, out io.Writer) error {
	q, err := a.SnapshotService.Quote(ctx)
	if err != nil {
		return err
	}
	if q.Stale {
		warnColor.Fprintln(out, "stale quote") //nolint:errcheck
	}
	fmt.Fprintf(out, "BTC/EUR %s  BTC/USD %s  EUR/USD %s\n", //nolint:errcheck
		q.BTCEUR.StringFixed(2), q.BTCUSD.StringFixed(2), q.EURUSD.StringFixed(4))
	return nil
}

func captureSnapshots(ctx context.Context, a *app.App, out io.Writer) error {
	res, err := a.SnapshotService.CaptureAll(ctx)
	if err != nil {
		return err
	}
	c := okColor
	if res.Failed > 0 {
		c = warnColor
	}
	c.Fprintf(out, "users=%d created=%d updated=%d failed=%d\n", //nolint:errcheck
		res.Users, res.Created, res.Updated, res.Failed)
	return nil
}
