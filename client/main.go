package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

var (
	errTableBusy = errors.New("table is not idle")
	errWatchDone = errors.New("watch: frame limit reached")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs: settings and a lazily dialled remote.
type app struct {
	v   *viper.Viper
	out io.Writer
	now func() time.Time
	// dial is swapped in tests.
	dial func(ctx context.Context) (*remote, error)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), out: os.Stdout, now: time.Now}
	a.dial = a.dialServer
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nexusdesk",
		Short: "Remote desk terminal for a NexusCafe server",
		Long: `nexusdesk drives the tables of a NexusCafe server from another machine.
Without --server it looks the server up on the local network.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "", "server gRPC address host:port (default: mDNS lookup)")
	flags.Duration("timeout", 10*time.Second, "per-command timeout")
	flags.Duration("discover-timeout", 3*time.Second, "how long to browse for a server")
	bindClientFlags(a.v, flags)

	root.AddCommand(
		a.listCmd(),
		a.startCmd(),
		a.simpleCmd("pause", "Pause a running table", func(id string) tables.Command { return tables.Pause{TableID: id} }),
		a.simpleCmd("resume", "Resume a paused table", func(id string) tables.Command { return tables.Resume{TableID: id} }),
		a.simpleCmd("stop", "Stop a table and fix its bill", func(id string) tables.Command { return tables.Stop{TableID: id} }),
		a.simpleCmd("reset", "Clear a table back to idle", func(id string) tables.Command { return tables.Reset{TableID: id} }),
		a.addProductCmd(),
		a.removeProductCmd(),
		a.transferCmd(),
		a.renameCmd(),
		a.addTableCmd(),
		a.deleteTableCmd(),
		a.watchCmd(),
	)
	return root
}

func bindClientFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix("NEXUSCAFE")
	for _, name := range []string{"server", "timeout", "discover-timeout"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	_ = v.BindEnv("server")
}

func (a *app) dialServer(ctx context.Context) (*remote, error) {
	addr := a.v.GetString("server")
	if addr == "" {
		found, err := discoverServer(ctx, a.v.GetDuration("discover-timeout"))
		if err != nil {
			return nil, fmt.Errorf("%w; pass --server host:port", err)
		}
		addr = found
	}
	return dial(addr)
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.v.GetDuration("timeout"))
}

// dispatch sends one command and prints the resulting table list.
func (a *app) dispatch(cmd *cobra.Command, c tables.Command) error {
	ctx, cancel := a.context(cmd)
	defer cancel()
	r, err := a.dial(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	list, err := r.Dispatch(ctx, c)
	if err != nil {
		return fmt.Errorf("%s failed: %w", c.Kind(), err)
	}
	return printTables(a.out, list, a.now())
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show every table with its live bill",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			r, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			list, err := r.ListTables(ctx)
			if err != nil {
				return err
			}
			return printTables(a.out, list, a.now())
		},
	}
}

func (a *app) simpleCmd(use, short string, build func(id string) tables.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <table>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, build(args[0]))
		},
	}
}

func (a *app) startCmd() *cobra.Command {
	var model string
	var controllers int
	cmd := &cobra.Command{
		Use:   "start <table>",
		Short: "Start a session at the server's current tier rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			psModel, count, err := parseTier(model, controllers)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			r, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			cfg, err := r.QuoteRate(ctx, psModel, count)
			if err != nil {
				return fmt.Errorf("rate lookup failed: %w", err)
			}
			list, err := r.Dispatch(ctx, tables.Start{TableID: args[0], Config: cfg})
			if err != nil {
				return fmt.Errorf("start failed: %w", err)
			}
			return printTables(a.out, list, a.now())
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", string(models.PS4), "console: ps3, ps4 or ps5")
	cmd.Flags().IntVarP(&controllers, "controllers", "c", int(models.TwoControllers), "controllers: 2 or 4")
	return cmd
}

func parseTier(model string, controllers int) (models.PSModel, models.ControllerCount, error) {
	m, c := models.PSModel(model), models.ControllerCount(controllers)
	if !m.Valid() {
		return "", 0, fmt.Errorf("unknown console model %q", model)
	}
	if !c.Valid() {
		return "", 0, fmt.Errorf("unsupported controller count %d", controllers)
	}
	return m, c, nil
}

func (a *app) addProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-product <table> <product-id>",
		Short: "Add a catalog product to a table's order",
		Long:  "The server looks the product up in its catalog; name and price are never taken from the terminal.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, tables.AddProduct{TableID: args[0], Product: models.Product{ID: args[1]}})
		},
	}
}

func (a *app) removeProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-product <table> <product-id>",
		Short: "Remove one unit of a product from a table's order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, tables.RemoveProduct{TableID: args[0], ProductID: args[1]})
		},
	}
}

func (a *app) transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to>",
		Short: "Close a table and move its bill onto another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, tables.Transfer{From: args[0], To: args[1]})
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <table> [name]",
		Short: "Set a table's display name; no name restores the default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return a.dispatch(cmd, tables.Rename{TableID: args[0], Name: name})
		},
	}
}

func (a *app) addTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-table",
		Short: "Append a new idle table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.dispatch(cmd, tables.AddTable{})
		},
	}
}

func (a *app) deleteTableCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete-table <table>",
		Short: "Remove a table; refuses busy tables unless --force",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			r, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			if !force {
				list, err := r.ListTables(ctx)
				if err != nil {
					return err
				}
				for _, t := range list {
					if t.ID == args[0] && t.Status != models.StatusIdle {
						return fmt.Errorf("%w: %s is %s", errTableBusy, t.Label(), t.Status)
					}
				}
			}
			list, err := r.Dispatch(ctx, tables.DeleteTable{TableID: args[0]})
			if err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			return printTables(a.out, list, a.now())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete even if a session is open")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var frames int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live bills until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			r, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			seen := 0
			err = r.Watch(ctx, func(frame cafepb.BillingFrame) error {
				fmt.Fprintf(a.out, "\n-- %s --\n", time.UnixMilli(frame.At).Format(time.TimeOnly))
				if err := printFrame(a.out, frame); err != nil {
					return err
				}
				seen++
				if frames > 0 && seen >= frames {
					return errWatchDone
				}
				return nil
			})
			if errors.Is(err, errWatchDone) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&frames, "count", "n", 0, "stop after this many frames (0 = forever)")
	return cmd
}
