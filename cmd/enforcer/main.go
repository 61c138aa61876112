package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"enforcer/internal/config"
	"enforcer/internal/logger"
	"enforcer/internal/runtime"
	"enforcer/pkg/logging"
)

var (
	configFile string
	logLevel   string
	port       int
	dryRun     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "enforcer",
		Short: "Runtime enforcement daemon for container security alerts",
		Long:  "Enforcer receives runtime security alerts, matches them against policy, and executes enforcement actions against the container runtime",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional, defaults apply without one)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Listen port override")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Compute and record actions without executing them")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(detectRuntimeCmd())
	rootCmd.AddCommand(validateConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return cfg, applyFlagOverrides(cfg)
}

// applyFlagOverrides layers the CLI flags over the loaded config.
// A flag left at its zero value keeps the config's setting; --dry-run
// can only switch dry-run on.
func applyFlagOverrides(cfg *config.Config) error {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dryRun {
		cfg.DryRun = true
	}
	return config.Validate(cfg)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the enforcement daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig()
			if err != nil {
				earlyLog.Error("Failed to load config: %v", err)
				return err
			}

			log, err := logger.New(cfg.Logging.Level)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting enforcement daemon")

			app := NewApp(cfg, configFile, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			log.InfowCtx(ctx, "Service running",
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
				"policies", len(cfg.Policies),
				"dry_run", cfg.DryRun,
			)
			if err := app.Run(ctx); err != nil && err != context.Canceled {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", err)
				return err
			}
			log.InfowCtx(ctx, "Service shutdown complete")
			return nil
		},
	}
}

func detectRuntimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect-runtime",
		Short: "Detect the container runtime and check connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := runtime.Detect(cfg.Runtime.Kind, cfg.Runtime.SocketPath)
			if err != nil {
				return fmt.Errorf("runtime detection failed: %w", err)
			}

			fmt.Printf("Detected runtime: %s\n", rt.Kind())

			ctx, cancel := context.WithTimeout(cmd.Context(), detectTimeout)
			defer cancel()

			if err := rt.Ping(ctx); err != nil {
				fmt.Printf("Connectivity: FAILED (%v)\n", err)
				return err
			}
			fmt.Println("Connectivity: OK")
			return nil
		},
	}
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate a config file without starting the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv("CONFIG_FILE")
			}
			if configFile == "" {
				return fmt.Errorf("config file is required: use --config or CONFIG_FILE")
			}

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
				return err
			}

			fmt.Print(configSummary(cfg))
			return nil
		},
	}
}

func configSummary(cfg *config.Config) string {
	s := "Config valid\n"
	s += fmt.Sprintf("  listen: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	s += fmt.Sprintf("  dry_run: %t\n", cfg.DryRun)
	s += fmt.Sprintf("  policies: %d\n", len(cfg.Policies))
	for _, p := range cfg.Policies {
		s += fmt.Sprintf("    - %s (action=%s, cooldown=%ds)\n", p.Name, p.Action, p.CooldownSeconds)
	}
	s += fmt.Sprintf("  excluded containers: %d\n", len(cfg.ExcludedContainers))
	return s
}
