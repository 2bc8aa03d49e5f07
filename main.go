package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pizzeria-telegram/bot"
	"pizzeria-telegram/config"
	"pizzeria-telegram/db"
	"pizzeria-telegram/metrics"
	"pizzeria-telegram/migrations"
	"pizzeria-telegram/services"
	"pizzeria-telegram/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	verbose bool
	logFile string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pizzeria",
	Short: "Papaliala's pizza storefront: Telegram bot and terminal shop",
	Long: `Papaliala's storefront lets customers browse the menu, fill a cart,
apply a coupon and place an order with a 30 minute delivery promise.

Run "pizzeria serve" for the Telegram bot or "pizzeria tui" for the terminal shop.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		// The terminal shop owns stdout; log to a file or nowhere.
		if cmd.Name() == "tui" {
			if logFile == "" {
				logger = zap.NewNop()
				return nil
			}
			config.OutputPaths = []string{logFile}
			config.ErrorOutputPaths = []string{logFile}
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal storefront for one local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return tui.Run(cmd.Context(), cfg, services.NopRecorder{}, logger.Named("tui"))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded SQL migrations (session snapshot table)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := db.Init(cmd.Context(), cfg.DB); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()
		return migrations.Apply(cmd.Context(), db.Pool, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	tuiCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: discard)")
	rootCmd.AddCommand(serveCmd, tuiCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return errors.New("TOKEN not set")
	}

	var snaps services.Snapshotter
	if cfg.Persist.Sessions {
		if err := db.Init(ctx, cfg.DB); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()
		if cfg.Persist.AutoMigrate {
			if err := migrations.Apply(ctx, db.Pool, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		snaps = services.PGSnapshots{}
		logger.Info("session persistence enabled", zap.String("db", cfg.DB.Database))
	}

	var rec services.Recorder = services.NopRecorder{}
	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		m = metrics.New()
		rec = m
	}

	b, err := bot.New(cfg, snaps, rec, logger.Named("bot"))
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if m != nil {
		g.Go(func() error {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, m.Handler(), logger.Named("metrics")); err != nil {
				return fmt.Errorf("metrics: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		b.Start(ctx)
		logger.Info("shutting down")
		return nil
	})
	return g.Wait()
}
