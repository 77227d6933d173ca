package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/automenta/mcr/internal/config"
	"github.com/automenta/mcr/internal/coordinator"
	"github.com/automenta/mcr/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mcr",
	Short: "MCR - neurosymbolic reasoning sessions",
	Long: `MCR keeps per-session logic knowledge bases and translates between
natural language and symbolic clauses.

Statements are translated to clauses by declarative strategies (LLM calls,
JSON parsing, SIR transformation, validation) and appended to the session KB.
Questions become logic queries, run against the KB plus ontologies with the
Mangle engine, and the solutions are rendered back to natural language.

Run without arguments to start the interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if configPath == "" {
			configPath = config.DefaultPath()
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		return logging.Initialize(logging.Options{
			Enabled:    cfg.Logging.DebugMode,
			Directory:  cfg.Logging.Directory,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		c, err := coordinator.Bootstrap(ctx, cfg)
		if err != nil {
			return err
		}
		return runREPL(ctx, c)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the MCR version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mcr %s\n", Version)
	},
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose process logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(assertCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(translateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
