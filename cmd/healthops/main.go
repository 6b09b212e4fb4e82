// Command healthops serves dependency health checks over HTTP and runs
// them once from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
	"github.com/jonwraymond/healthops/server"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

const defaultConfigFile = "healthops.yml"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "healthops",
		Short:        "Dependency health checks for services",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFile, "config file path")

	root.AddCommand(versionCmd())
	root.AddCommand(serveCmd(&cfgFile))
	root.AddCommand(checkCmd(&cfgFile))
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "healthops %s (commit %s)\n", version, commit)
		},
	}
}

// loadConfig reads path. When the default file is absent the built-in
// defaults are used, with environment overrides.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context(), path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.FromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = version
	}
	return cfg, nil
}

func serveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *cfgFile)
		},
	}
}

func runServe(cmd *cobra.Command, cfgFile string) error {
	cfg, err := loadConfig(cmd, cfgFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.WithoutCancel(ctx)); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "telemetry shutdown:", err)
		}
	}()
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	agg, probes, err := newAggregator(ctx, cfg, mw, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := probes.Close(); err != nil {
			logger.Warn(ctx, "closing probes", observe.Field{Key: "error", Value: err.Error()})
		}
	}()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithFreshLimiter(resilience.NewRateLimiter(cfg.FreshLimiterConfig())),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	if authCfg := cfg.AuthConfig(); authCfg.Enabled() {
		a, err := auth.New(authCfg)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		opts = append(opts, server.WithAuthenticator(a))
	}
	if cfg.Telemetry.MetricsExporter == "prometheus" {
		opts = append(opts, server.WithMetrics(nil))
	}

	srv := server.New(agg, opts...)
	return srv.Run(ctx, server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
	})
}
