package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lirra/internal/client/config"
)

type rootOptions struct {
	configPath string
	addr       string
	noColor    bool
	email      string
}

// NewRootCommand builds the lirra-admin command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	var app *App

	root := &cobra.Command{
		Use:           "lirra-admin",
		Short:         "Operator tool for the Lirra admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.ServerURL = opts.addr
			}
			if flags.Changed("no-color") {
				cfg.NoColor = opts.noColor
			}
			app = NewApp(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	pf.StringVar(&opts.addr, "addr", "", "Lirra API base URL (overrides config)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	pf.StringVar(&opts.email, "email", "", "admin email for one-shot commands (password is prompted)")

	current := func() *App { return app }
	root.AddCommand(
		newStatsCommand(current, opts),
		newKeysCommand(current, opts),
		newUsersCommand(current, opts),
		newREPLCommand(current),
	)
	return root
}

// oneShot authenticates and then runs fn, reporting failures in colour.
func oneShot(current func() *App, opts *rootOptions, fn func(cmd *cobra.Command, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := current()
		if err := a.authenticate(cmd.Context(), opts.email); err != nil {
			return err
		}
		if err := fn(cmd, a, args); err != nil {
			return errors.New(describe(err))
		}
		return nil
	}
}

func newStatsCommand(current func() *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics",
		Args:  cobra.NoArgs,
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, _ []string) error {
			return a.Stats(cmd.Context())
		}),
	}
}

func newUsersCommand(current func() *App, opts *rootOptions) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List dashboard users",
		Args:  cobra.NoArgs,
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, _ []string) error {
			return a.Users(cmd.Context(), search)
		}),
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by email or name")
	return cmd
}

func newKeysCommand(current func() *App, opts *rootOptions) *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage credential keys",
	}

	var (
		plan        string
		days, count int
		status      string
		extendDays  int
	)

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate credential keys for a plan",
		Args:  cobra.NoArgs,
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, _ []string) error {
			if days <= 0 || count <= 0 {
				return fmt.Errorf("--days and --count must be positive")
			}
			return a.Generate(cmd.Context(), plan, days, count)
		}),
	}
	generate.Flags().StringVar(&plan, "plan", "", "plan id (starter, professional, enterprise)")
	generate.Flags().IntVar(&days, "days", 30, "subscription length granted by each key")
	generate.Flags().IntVar(&count, "count", 1, "number of keys to generate")
	_ = generate.MarkFlagRequired("plan")

	list := &cobra.Command{
		Use:   "list",
		Short: "List credential keys",
		Args:  cobra.NoArgs,
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, _ []string) error {
			return a.Tokens(cmd.Context(), status)
		}),
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (issued, redeemed, revoked)")

	revoke := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an unredeemed key",
		Args:  cobra.ExactArgs(1),
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, args []string) error {
			return a.Revoke(cmd.Context(), args[0])
		}),
	}

	extend := &cobra.Command{
		Use:   "extend <id>",
		Short: "Extend a key by a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: oneShot(current, opts, func(cmd *cobra.Command, a *App, args []string) error {
			if extendDays <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			return a.Extend(cmd.Context(), args[0], extendDays)
		}),
	}
	extend.Flags().IntVar(&extendDays, "days", 0, "days to add")
	_ = extend.MarkFlagRequired("days")

	keys.AddCommand(generate, list, revoke, extend)
	return keys
}

func newREPLCommand(current func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current().Root(cmd.Context())
			return nil
		},
	}
}
