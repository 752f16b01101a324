package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/gorates/analysis"
	"github.com/sartorproj/gorates/config"
	"github.com/sartorproj/gorates/report"
	"github.com/sartorproj/gorates/stats"
	"github.com/sartorproj/gorates/timeseries"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := opts.newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = analysis.NewRunner(cfg, logger, cmd.OutOrStdout()).Run(ctx)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gorates.yaml", "Path to the YAML config file")
	return cmd
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gorates.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}

// sourceFlags are the column options shared by the ad-hoc commands.
type sourceFlags struct {
	dateCol    string
	valueCol   string
	dateFormat string
	delimiter  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dateCol, "date-col", "Date", "Date column name")
	cmd.Flags().StringVar(&f.valueCol, "value-col", "Adj Close", "Value column name")
	cmd.Flags().StringVar(&f.dateFormat, "date-format", "%Y-%m-%d", "Date format (strftime pattern or Go layout)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", ",", `Field delimiter, one character or "\t"`)
}

// parseDelimiter accepts a single character, or "\t" and "tab" for a tab.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	return r[0], nil
}

func (f *sourceFlags) load(path string, logger *zap.Logger) (*timeseries.Series, error) {
	delimiter, err := parseDelimiter(f.delimiter)
	if err != nil {
		return nil, err
	}
	opts := &timeseries.CSVOptions{
		DateColumn:  f.dateCol,
		ValueColumn: f.valueCol,
		DateFormat:  f.dateFormat,
		Label:       path,
		Delimiter:   delimiter,
		Logger:      logger,
	}
	s, st, err := timeseries.LoadCSV(path, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded series",
		zap.String("series", path),
		zap.Int("loaded", st.Loaded),
		zap.Int("skipped", st.Skipped))
	return s, nil
}

func newCorrelateCommand(opts *rootOptions) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "correlate FILE_A FILE_B",
		Short: "Correlate two CSV series on their shared dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.newLogger("")
			if err != nil {
				return err
			}
			defer logger.Sync()

			a, err := flags.load(args[0], logger)
			if err != nil {
				return err
			}
			b, err := flags.load(args[1], logger)
			if err != nil {
				return err
			}

			result, err := stats.Correlate(a, b)
			if err != nil {
				return err
			}
			return report.NewPrinter(cmd.OutOrStdout()).Print(result)
		},
	}

	flags.register(cmd)
	return cmd
}

func newTransformCommand(opts *rootOptions, name, short string) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   name + " FILE",
		Short: short + "; writes ds,y rows to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.newLogger("")
			if err != nil {
				return err
			}
			defer logger.Sync()

			s, err := flags.load(args[0], logger)
			if err != nil {
				return err
			}

			var out *timeseries.Series
			switch name {
			case "normalize":
				out, err = s.Normalize()
			case "derivative":
				out, err = s.Derivative()
			default:
				err = fmt.Errorf("unknown transform %q", name)
			}
			if err != nil {
				return err
			}
			return timeseries.WriteCSV(cmd.OutOrStdout(), out)
		},
	}

	flags.register(cmd)
	return cmd
}
