package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/python-discord/blurple/internal/config"
	"github.com/python-discord/blurple/internal/format"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Built by the root command before any subcommand runs
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blurple",
	Short: "blurple - the PEP 9001 Python formatter",
	Long: `blurple rewrites syntactically valid Python into an equivalent,
aggressively blurple rendition: randomized spacing, inverted indentation,
operator-driven parentheses, re-spelled string literals, and statements
packed onto shared lines. The output parses and runs exactly like the
input; it just looks the way PEP 9001 intended.

Input that does not parse is rejected with the position of the first
offense and produces no output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		// Initialize logger
		zapCfg := zap.NewProductionConfig()
		if level, parseErr := zapcore.ParseLevel(cfg.Logging.Level); parseErr == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
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

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".blurple.yaml", "Config file path")
}

// newFormatter builds a Formatter from the loaded config plus command-line
// overrides. A zero seed or budget means "use the config value".
func newFormatter(seed int64, budget int) *format.Formatter {
	opts := []format.Option{
		format.WithLogger(logger),
		format.WithLineBudget(cfg.Format.LineBudget),
		format.WithIndentRange(cfg.Format.IndentMin, cfg.Format.IndentMax),
	}
	if budget > 0 {
		opts = append(opts, format.WithLineBudget(budget))
	}
	switch {
	case seed != 0:
		opts = append(opts, format.WithSeed(seed))
	case cfg.Format.Seed != 0:
		opts = append(opts, format.WithSeed(cfg.Format.Seed))
	}
	return format.New(opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error:")+" "+err.Error())
		os.Exit(1)
	}
}
