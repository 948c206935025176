// Package cli implements the todo command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-client/internal/api"
	"github.com/Makepad-fr/tada-client/internal/app"
	"github.com/Makepad-fr/tada-client/internal/auth"
	"github.com/Makepad-fr/tada-client/internal/config"
	"github.com/Makepad-fr/tada-client/internal/logging"
	"github.com/Makepad-fr/tada-client/internal/tui"
	"github.com/Makepad-fr/tada-client/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Options wire the command line to its surroundings. Zero values use the
// process's stdio, the HTTP API client and the real interactive view.
type Options struct {
	In       io.Reader
	Out, Err io.Writer

	// NewBackend builds the API backend once config and credentials are known.
	NewBackend func(cfg *config.Config, token string, logger *log.Logger) (app.Backend, error)
	// RunUI runs the interactive view.
	RunUI func(ctx context.Context, b app.Backend, opts tui.Options) error
}

// usageError marks errors that should exit with ExitUsage.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error { return usageError{fmt.Sprintf(format, args...)} }

// env is the per-invocation state shared by subcommands.
type env struct {
	opts   Options
	ov     config.Overrides
	cfg    *config.Config
	logger *log.Logger
	creds  *auth.Store
}

func (e *env) backend() (app.Backend, error) { return e.backendWith(e.logger) }

func (e *env) backendWith(logger *log.Logger) (app.Backend, error) {
	token, err := e.creds.Token()
	if err != nil {
		return nil, err
	}
	return e.opts.NewBackend(e.cfg, token, logger)
}

func (e *env) controller() (*app.Controller, error) {
	b, err := e.backend()
	if err != nil {
		return nil, err
	}
	return app.NewController(b, e.logger), nil
}

// Run executes the command line and returns an exit code.
func Run(args []string, opts Options) int {
	opts = withDefaults(opts)
	root := newRootCmd(opts)
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(opts.Err, err.Error())

	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintln(opts.Err)
		fmt.Fprintln(opts.Err, ui.C(ui.Current().Muted, "Run `todo help` for usage."))
		return ExitUsage
	}
	return ExitError
}

func withDefaults(opts Options) Options {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.NewBackend == nil {
		opts.NewBackend = newAPIBackend
	}
	if opts.RunUI == nil {
		opts.RunUI = tui.Run
	}
	return opts
}

func newAPIBackend(cfg *config.Config, token string, logger *log.Logger) (app.Backend, error) {
	c, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithToken(token),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newRootCmd(opts Options) *cobra.Command {
	e := &env{opts: opts}
	var noColor bool

	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - a tiny client for a remote todo list",
		Long: `todo talks to a todo API (GET/POST/PUT/DELETE /todos) and keeps at most
10 items on the list.

Examples:
  todo add "Buy milk" -d "2 liters"
  todo ls --view uncompleted
  todo done 2
  todo edit 2 --title "Buy oat milk"
  todo rm 3
  todo ui`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.ov)
			if err != nil {
				return err
			}
			e.cfg = cfg
			ui.SetTheme(cfg.UI.Theme)
			if noColor {
				ui.SetColorForcing(false, true)
			}
			e.logger = logging.New(opts.Err, logging.OptionsFromConfig(cfg.Log, "todo"))
			e.creds = auth.NewStore(cfg.Home)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("missing subcommand")
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&e.ov.ConfigFile, "config", "", "config file (default ./tada.toml, then ~/.tada/config.toml)")
	pf.StringVar(&e.ov.APIURL, "api-url", "", "todo API base url (env TADA_API_URL)")
	pf.StringVar(&e.ov.Theme, "theme", "", "output theme: "+strings.Join(ui.Themes(), ", "))
	pf.StringVar(&e.ov.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newListCmd(e),
		newAddCmd(e),
		newEditCmd(e),
		newDoneCmd(e),
		newRemoveCmd(e),
		newUICmd(e),
		newAuthCmd(e),
	)
	return root
}

// exactArgs is cobra.ExactArgs reporting a usage line instead.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

func parseID(verb, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, usagef("%s: not a valid id: %s", verb, s)
	}
	return n, nil
}
