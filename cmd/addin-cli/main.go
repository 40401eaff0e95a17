// Command addin-cli drives the contact enrichment API the way the Outlook
// add-in does: it keeps a session on disk and sends every call through the
// client gateway.
//
//	addin-cli [flags] <command> [args]
//
// Commands: login, register, logout, whoami, verify, enrich <email>,
// search <query>, directory, stats, health.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duccv/contact-addin/config"
	"github.com/duccv/contact-addin/internal/client"
	"github.com/duccv/contact-addin/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("addin-cli", flag.ContinueOnError)
	var (
		configDir = fs.String("config", "./config", "directory holding config.yaml")
		baseURL   = fs.String("url", "", "API base URL (overrides client.base_url)")
		email     = fs.String("email", os.Getenv("ADDIN_EMAIL"), "account email for login and register")
		password  = fs.String("password", os.Getenv("ADDIN_PASSWORD"), "account password for login and register")
		page      = fs.Int("page", 1, "directory page")
		limit     = fs.Int("limit", client.DefaultDirectoryPageSize, "directory page size")
		retries   = fs.Int("retries", -1, "retry attempts for read commands (-1 uses client.retry_attempts)")
		verbose   = fs.Bool("v", false, "log requests")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: addin-cli [flags] login|register|logout|whoami|verify|enrich <email>|search <query>|directory|stats|health")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	env, err := config.LoadEnv(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	log := zap.NewNop()
	if *verbose {
		log = logger.GetLogger(env.LoggerConfig)
		defer log.Sync()
	}

	cfg := client.ConfigFromEnv(env.ClientConfig)
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []client.Option{client.WithLogger(log)}
	session := client.NewSession(cfg, client.NewFileStorage(env.ClientConfig.StoragePath), opts...)
	gateway := client.NewGateway(session, client.NotifierFunc(func(level client.Level, msg string) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level, msg)
	}), opts...)
	defer gateway.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login", "register", "health":
	default:
		session.Initialize(ctx)
	}

	out, err := dispatch(ctx, session, gateway, cmd, rest, command{
		email: *email, password: *password, page: *page, limit: *limit, retries: *retries,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "error: %s\n", apiErr.Message)
			for _, d := range apiErr.Details {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
			}
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	}
	return 0
}

type command struct {
	email    string
	password string
	page     int
	limit    int
	retries  int
}

var errUsage = errors.New("missing argument; run with -h for usage")

func dispatch(ctx context.Context, s *client.Session, g *client.Gateway, name string, args []string, c command) (any, error) {
	retry := func(fn func(ctx context.Context) (any, error)) (any, error) {
		policy := g.RetryPolicy(c.retries)
		policy.Retryable = client.IsTransient
		return client.Retry(ctx, policy, fn)
	}

	switch name {
	case "login", "register":
		var err error
		if name == "login" {
			err = s.Login(ctx, c.email, c.password)
		} else {
			err = s.Register(ctx, c.email, c.password)
		}
		if err != nil {
			return nil, err
		}
		p, _ := s.Principal()
		return p, nil
	case "logout":
		s.Logout()
		return nil, nil
	case "whoami":
		p, ok := s.Principal()
		if !s.IsLoggedIn() || !ok {
			return nil, client.ErrAuthRequired
		}
		return p, nil
	case "verify":
		valid, err := s.Verify(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"valid": valid}, nil
	case "enrich":
		if len(args) == 0 {
			return nil, errUsage
		}
		return retry(func(ctx context.Context) (any, error) { return g.EnrichContact(ctx, args[0]) })
	case "search":
		if len(args) == 0 {
			return nil, errUsage
		}
		return retry(func(ctx context.Context) (any, error) { return g.SearchContacts(ctx, args[0]) })
	case "directory":
		return retry(func(ctx context.Context) (any, error) { return g.Directory(ctx, c.page, c.limit) })
	case "stats":
		return retry(func(ctx context.Context) (any, error) { return g.Stats(ctx) })
	case "health":
		return retry(func(ctx context.Context) (any, error) { return g.Health(ctx) })
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}
