package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-client/internal/auth"
	"github.com/Makepad-fr/tada-client/internal/ui"
)

func newAuthCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication for the todo API",
		Args:  exactArgs(0, "todo auth <login|logout|status|whoami>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return usagef("usage: todo auth <login|logout|status|whoami>")
		},
	}
	cmd.AddCommand(newAuthLoginCmd(e), newAuthLogoutCmd(e), newAuthStatusCmd(e), newAuthWhoAmICmd(e))
	return cmd
}

func newAuthLoginCmd(e *env) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token",
		Args:  exactArgs(0, "todo auth login [--token t]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(e.opts.Out, "Paste your token: ")
				line, err := bufio.NewReader(e.opts.In).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			if err := e.creds.Set(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK(e.opts.Out, "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to save instead of prompting")
	return cmd
}

func newAuthLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  exactArgs(0, "todo auth logout"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := e.creds.Get()
			if ti != nil && ti.Source == "env" {
				ui.OK(e.opts.Out, "token is provided by "+auth.EnvToken+" env var (nothing to delete)")
				return nil
			}
			if err := e.creds.Delete(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(e.opts.Out, "logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  exactArgs(0, "todo auth status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := e.opts.Out
			ti, err := e.creds.Get()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Fprintln(out, ui.C(ui.Current().Muted, "not logged in"))
				fmt.Fprintln(out, "Run: todo auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", ti.Source)
			if ti.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "expires: (unknown)")
			}
			fmt.Fprintf(out, "env override: %s\n", auth.EnvToken)
			return nil
		},
	}
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func newAuthWhoAmICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the token's claims when it is a JWT",
		Args:  exactArgs(0, "todo auth whoami"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := e.creds.Get()
			if err != nil {
				return err
			}
			if ti == nil {
				return usagef("not logged in. Run: todo auth login")
			}
			if payload, ok := auth.Claims(ti.Token); ok {
				fmt.Fprintln(e.opts.Out, "JWT payload:")
				fmt.Fprintln(e.opts.Out, payload)
				return nil
			}
			fmt.Fprintln(e.opts.Out, "Opaque token (cannot introspect locally).")
			fmt.Fprintln(e.opts.Out, "source:", ti.Source)
			return nil
		},
	}
}
