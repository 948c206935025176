package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-client/internal/logging"
	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/tui"
	"github.com/Makepad-fr/tada-client/internal/ui"
)

func newListCmd(e *env) *cobra.Command {
	var (
		view  string
		group bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    exactArgs(0, "todo ls [--view all|completed|uncompleted] [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := model.ParseView(view)
			if !ok {
				return usagef("ls: unknown view %q (want all, completed or uncompleted)", view)
			}
			c, err := e.controller()
			if err != nil {
				return err
			}
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			c.SetView(v)
			if !cmd.Flags().Changed("group") {
				group = e.cfg.UI.Group
			}
			ui.Panel(e.opts.Out, listLines(c.State.Todos, v, group))
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "all", "which todos to show: all, completed, uncompleted")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func newAddCmd(e *env) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new todo (title can be multiple words)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <title...> [-d description]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.controller()
			if err != nil {
				return err
			}
			// the cap is checked against the current list
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			c.State.Title = strings.Join(args, " ")
			c.State.Description = description
			if err := c.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(e.opts.Out, c.State.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title and/or description of a todo",
		Args:  exactArgs(1, "todo edit <id> [--title t] [--description d]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			var tp, dp *string
			if cmd.Flags().Changed("title") {
				tp = &title
			}
			if cmd.Flags().Changed("description") {
				dp = &description
			}
			if tp == nil && dp == nil {
				return usagef("edit: nothing to change (use --title and/or --description)")
			}
			c, err := e.controller()
			if err != nil {
				return err
			}
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := c.Edit(cmd.Context(), id, tp, dp); err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			ui.OK(e.opts.Out, c.State.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newDoneCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle completion of a todo",
		Args:    exactArgs(1, "todo done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("done", args[0])
			if err != nil {
				return err
			}
			c, err := e.controller()
			if err != nil {
				return err
			}
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := c.Toggle(cmd.Context(), id); err != nil {
				return fmt.Errorf("done: %w", err)
			}
			ui.OK(e.opts.Out, c.State.Status)
			return nil
		},
	}
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    exactArgs(1, "todo rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			c, err := e.controller()
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), id); err != nil {
				return err
			}
			ui.OK(e.opts.Out, "removed")
			return nil
		},
	}
}

func newUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "ui",
		Aliases: []string{"tui"},
		Short:   "Open the interactive list",
		Args:    exactArgs(0, "todo ui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alternate screen owns the terminal, so every log goes to a file
			f, err := logging.OpenFile(e.cfg.LogFile())
			if err != nil {
				return err
			}
			defer f.Close()
			logger := logging.New(f, logging.OptionsFromConfig(e.cfg.Log, "todo"))

			b, err := e.backendWith(logger)
			if err != nil {
				return err
			}

			return e.opts.RunUI(cmd.Context(), b, tui.Options{
				Theme:   e.cfg.UI.Theme,
				Logger:  logger,
				Timeout: e.cfg.API.Timeout,
			})
		},
	}
}
