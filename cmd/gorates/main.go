// Command gorates correlates stock index closes with currency exchange rates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.3.0"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	logLevel string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gorates",
		Short: "Correlate financial rate series",
		Long: `gorates loads exchange rates and index closes from CSV files, aligns them
by date and reports the Pearson correlation of every index against every
currency, together with normalized charts.

Examples:
  gorates init gorates.yaml              # write a starter config
  gorates run --config gorates.yaml      # full analysis
  gorates correlate a.csv b.csv          # one ad-hoc pair
  gorates normalize data/^GSPC.csv --date-col Date --value-col "Adj Close"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts := &rootOptions{}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCorrelateCommand(opts))
	rootCmd.AddCommand(newTransformCommand(opts, "normalize", "Scale a series so its largest magnitude is 1"))
	rootCmd.AddCommand(newTransformCommand(opts, "derivative", "Per-day rate of change between neighbouring observations"))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gorates v%s\n", version)
			return nil
		},
	}
}

// newLogger builds a logger for level, preferring the --log-level flag.
// Logs go to stderr so stdout stays clean for data.
func (o *rootOptions) newLogger(level string) (*zap.Logger, error) {
	if o.logLevel != "" {
		level = o.logLevel
	}
	if level == "" {
		level = "info"
	}

	logConfig := zap.NewProductionConfig()
	if level == "debug" {
		logConfig = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logConfig.Level = zap.NewAtomicLevelAt(lvl)
	logConfig.OutputPaths = []string{"stderr"}
	return logConfig.Build()
}
