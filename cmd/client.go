package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/client"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// clientEnv is what every client subcommand works with: the API client, the
// restored session and the view guard shared by the workspaces.
type clientEnv struct {
	cfg      *internal.Config
	api      *client.Client
	sessions *session.Manager
	guard    *client.Guard
	redis    *redis.Client
	logger   *slog.Logger
}

func newClientEnv(ctx context.Context) (*clientEnv, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		cfg = internal.LoadConfigFromEnv()
	}
	if url := os.Getenv("TIMESHEET_API_URL"); url != "" {
		cfg.Client.BaseURL = url
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}

	lg := logger.Discard()
	if os.Getenv("TIMESHEET_DEBUG") == "true" {
		lg = logger.Init(logger.Options{Level: "debug", Format: "color"})
	}

	env := &clientEnv{
		cfg:    cfg,
		guard:  client.NewGuard(),
		logger: lg,
	}
	env.api = client.New(client.Options{
		BaseURL:    cfg.Client.BaseURL,
		Timeout:    cfg.Client.Timeout,
		MaxRetries: cfg.Client.MaxRetries,
		RetryDelay: cfg.Client.RetryDelay,
		Logger:     lg,
	})

	var store session.Store
	switch cfg.Session.Store {
	case "redis":
		env.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = session.NewRedisStore(env.redis, cfg.Session.Key)
	default:
		store = session.NewFileStore(cfg.Session.File)
	}

	profile := func(ctx context.Context, token string) (*domain.User, error) {
		scoped := client.New(client.Options{
			BaseURL:    cfg.Client.BaseURL,
			Timeout:    cfg.Client.Timeout,
			MaxRetries: cfg.Client.MaxRetries,
			RetryDelay: cfg.Client.RetryDelay,
			Logger:     lg,
		}).WithToken(func() string { return token })
		return client.NewUserRepository(scoped).Me(ctx)
	}

	env.sessions = session.NewManager(store, env.api, profile, lg)
	env.api.WithToken(env.sessions.Token)

	if _, err := env.sessions.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return env, nil
}

func (e *clientEnv) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
}

// actor returns the logged-in caller or an instruction to log in.
func (e *clientEnv) actor() (domain.Actor, error) {
	actor, err := e.sessions.Actor()
	if err != nil {
		return domain.Actor{}, errors.New("not logged in; run `timesheet login` first")
	}
	return actor, nil
}

// withClient runs fn with a ready client environment.
func withClient(fn func(ctx context.Context, env *clientEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		env, err := newClientEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(ctx, env, args)
	}
}

// printError renders failures for a terminal user. Field errors name the
// field; a 401 asks the user to log in again.
func printError(err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		errColor.Fprintln(os.Stderr, "error:", err)
		return
	}
	switch {
	case appErr.Type == internal.ErrorTypeUnauthorized:
		errColor.Fprintln(os.Stderr, "session rejected:", appErr.Message)
		fmt.Fprintln(os.Stderr, "run `timesheet login` to sign in again")
	case appErr.Type == internal.ErrorTypeInvalidTransition:
		warnColor.Fprintln(os.Stderr, appErr.Message)
	default:
		if field, ok := appErr.FieldError(); ok {
			errColor.Fprintf(os.Stderr, "%s: %s\n", field.Field, field.Message)
			return
		}
		errColor.Fprintln(os.Stderr, "error:", appErr.Message)
	}
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeInvalidValue)
	}
	return id, nil
}

func statusColor(s domain.ApprovalStatus) *color.Color {
	switch s {
	case domain.StatusApproved:
		return okColor
	case domain.StatusRejected:
		return errColor
	default:
		return warnColor
	}
}

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
