package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/foodsync/internal/cli"
	"codeberg.org/snonux/foodsync/internal/config"
	"codeberg.org/snonux/foodsync/internal/dispatch"
	"codeberg.org/snonux/foodsync/internal/logger"
	"codeberg.org/snonux/foodsync/internal/metrics"
	"codeberg.org/snonux/foodsync/internal/models"
	"codeberg.org/snonux/foodsync/internal/processor"
	"codeberg.org/snonux/foodsync/internal/publish"
	"codeberg.org/snonux/foodsync/internal/server"
	"codeberg.org/snonux/foodsync/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create commands
	rootCmd := cli.CreateRootCommand(flags)
	serveCmd := cli.CreateServeCommand(flags)
	dispatchCmd := cli.CreateDispatchCommand()
	rootCmd.AddCommand(serveCmd, dispatchCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), flags)
	}
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	}
	dispatchCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func runSync(ctx context.Context, flags *cli.Flags) error {
	// Handle --list-models flag
	if flags.ListModels {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		lister := models.NewLister(cfg.Translation.OpenAIKey, cfg.Translation.BaseURL)
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	proc, err := newProcessor(cfg, log, nil)
	if err != nil {
		return err
	}

	_, err = proc.Run(ctx)
	return err
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	m := metrics.New()

	var syncer server.Syncer
	if proc, err := newProcessor(cfg, log, m); err != nil {
		log.Warn("Sync route disabled", zap.Error(err))
	} else {
		syncer = proc
	}

	var trigger server.Trigger
	if d, err := dispatch.New(cfg.Dispatch, nil); err != nil {
		log.Warn("Trigger route disabled", zap.Error(err))
	} else {
		trigger = d
	}

	srv := server.New(cfg.Server.APIKey, syncer, trigger, m, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	return srv.Shutdown(10 * time.Second)
}

func runDispatch(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	d, err := dispatch.New(cfg.Dispatch, nil)
	if err != nil {
		return err
	}

	if err := d.Trigger(ctx); err != nil {
		return err
	}

	log.Info("Update triggered successfully!",
		zap.String("repository", d.Repository()),
		zap.String("event_type", d.EventType()))
	return nil
}

func newProcessor(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) (*processor.Processor, error) {
	tr, err := translation.NewFromConfig(&cfg.Translation)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithMetrics(m),
	}

	if cfg.Storage.Enabled {
		client, err := publish.NewClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		opts = append(opts, processor.WithPublisher(publish.NewPublisher(client, cfg.Storage, log)))
	}

	return processor.NewProcessor(cfg, tr, opts...), nil
}
