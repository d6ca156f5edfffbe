package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/config"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/logging"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string
	var headless bool

	cmd := &cobra.Command{
		Use:   "nexuscafe",
		Short: "NexusCafe - PlayStation cafe tables and billing",
		Long: `NexusCafe runs the cafe desk: the operator terminal, a gRPC table
service for remote terminals and a JSON admin API for the menu and prices.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			if headless {
				v.Set("ui.enabled", false)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default ./nexuscafe.yaml)")
	flags.BoolVar(&headless, "headless", false, "run without the terminal UI")
	flags.String("storage", "sqlite", "storage driver: memory, sqlite, postgres or badger")
	flags.String("db", "nexus_cafe.db", "database file or directory for sqlite and badger")
	flags.String("dsn", "", "postgres connection string")
	flags.String("grpc-addr", ":50051", "gRPC listen address")
	flags.String("http-addr", ":8080", "HTTP admin API listen address")
	flags.String("log-level", "info", "log level")
	bindFlags(v, cmd, map[string]string{
		"storage.driver": "storage",
		"storage.path":   "db",
		"storage.dsn":    "dsn",
		"grpc.addr":      "grpc-addr",
		"http.addr":      "http-addr",
		"log.level":      "log-level",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCfg := cfg.Log
	if !cfg.UI.Enabled && logCfg.Output == "nexus_cafe.log" {
		logCfg.Output = "stderr"
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	d, kv, err := InitDesk(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer kv.Close()
	ctx = tables.WithManager(ctx, d.tables)
	defer logOpenSessions(ctx, log)

	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr, err)
		}
		grpcSrv := grpc.NewServer()
		cafepb.RegisterTableServiceServer(grpcSrv, &server{desk: d, tick: cfg.Billing.TickInterval, log: log})
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Error("grpc server stopped", zap.Error(err))
			}
		}()
		defer grpcSrv.Stop()
		log.Info("grpc listening", zap.String("addr", cfg.GRPC.Addr))

		if cfg.Discovery.Enabled {
			shutdown, err := startDiscovery(cfg.Discovery.Instance, cfg.GRPC.Addr, log)
			if err != nil {
				log.Warn("discovery disabled", zap.Error(err))
			} else {
				defer shutdown()
			}
		}
	}

	if cfg.HTTP.Enabled {
		httpSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: NewRouter(d, log)}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
		log.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
	}

	if !cfg.UI.Enabled {
		<-ctx.Done()
		log.Info("shutting down")
		return nil
	}

	watcher := billing.Watcher{Interval: cfg.Billing.TickInterval, Now: d.tables.Now}
	return newConsole(d, log).Run(ctx, watcher)
}

// logOpenSessions records tables still running at shutdown; their clocks
// keep counting and resume billing on the next start.
func logOpenSessions(ctx context.Context, log *zap.Logger) {
	for _, t := range tables.FromContext(ctx).Tables() {
		if t.Status == models.StatusActive || t.Status == models.StatusPaused {
			log.Info("session left open", zap.String("table", t.Label()), zap.String("status", string(t.Status)))
		}
	}
}
