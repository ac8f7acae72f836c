// Command qzft samples a region of the complex plane, evaluates the
// Riemann zeta magnitude over it at high precision and renders the
// resulting potential landscape. It can also serve the interactive
// dashboard or join a NATS worker pool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qzft/pkg/config"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qzft",
	Short: "Riemann zeta collapse-field simulator",
	Long: `qzft computes a potential landscape derived from the Riemann zeta
function over a rectangular window of the complex plane. The magnitude
|zeta(s)| is evaluated at 25 significant digits on every lattice point,
turned into an inverse-square potential plus a quadratic penalty for
leaving the critical line, and rendered as a four-panel heat map.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadConfig resolves the effective config: file if given, defaults
// otherwise.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWorkerCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
