// Package analysis runs a configured correlation study end to end: load
// every source, draw the charts, correlate each index against each
// currency and write the report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/gorates/config"
	"github.com/sartorproj/gorates/metrics"
	"github.com/sartorproj/gorates/plot"
	"github.com/sartorproj/gorates/report"
	"github.com/sartorproj/gorates/stats"
	"github.com/sartorproj/gorates/timeseries"
)

// Result is the outcome of one run.
type Result struct {
	RunID        string
	Series       map[string]*timeseries.Series
	Autocorr     map[string]*stats.ACFResult
	Correlations []stats.CorrelationResult
	Errors       []error // pairs that could not be correlated
}

// Runner executes a config.
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	printer *report.Printer
}

// NewRunner creates a Runner. Summary lines go to out; a nil logger
// discards logs.
func NewRunner(cfg *config.Config, logger *zap.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	printer := report.NewPrinter(out)
	if cfg.Output.Alpha > 0 {
		printer.Alpha = cfg.Output.Alpha
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRecorder(),
		printer: printer,
	}
}

// Metrics returns the recorder used by the runner.
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// Run loads, plots, correlates and reports.
//
// A pair that cannot be correlated is logged and left out of the report.
// With output.fail_on_error set, those failures are returned as one joined
// error after the report is written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", result.RunID))
	logger.Info("Starting analysis",
		zap.Int("sources", len(r.cfg.Sources)),
		zap.Int("plots", len(r.cfg.Plots)))

	series, err := r.loadSources(ctx, logger)
	if err != nil {
		return nil, err
	}
	result.Series = series
	result.Autocorr = r.autocorrelations(logger, series)

	if err := r.renderPlots(ctx, logger, series); err != nil {
		return nil, err
	}

	indexes := pick(series, r.cfg.SourcesWithRole(config.RoleIndex))
	currencies := pick(series, r.cfg.SourcesWithRole(config.RoleCurrency))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Correlations, result.Errors = CorrelateAll(indexes, currencies)

	for _, res := range result.Correlations {
		r.metrics.Correlated(res)
		if err := r.printer.Print(res); err != nil {
			return nil, fmt.Errorf("print summary: %w", err)
		}
	}
	for _, err := range result.Errors {
		r.metrics.CorrelationFailed()
		logger.Error("Correlation failed", zap.Error(err))
	}

	out := r.cfg.Path(r.cfg.Output.Correlations)
	if err := report.WriteFile(out, result.Correlations); err != nil {
		return nil, err
	}
	logger.Info("Wrote correlations",
		zap.String("file", out),
		zap.Int("rows", len(result.Correlations)),
		zap.Int("failed", len(result.Errors)))

	r.metrics.Finished()
	if tf := r.cfg.Output.MetricsTextfile; tf != "" {
		if err := r.metrics.WriteTextfile(r.cfg.Path(tf)); err != nil {
			return nil, fmt.Errorf("write metrics textfile: %w", err)
		}
	}

	if r.cfg.Output.FailOnError && len(result.Errors) > 0 {
		return result, fmt.Errorf("%d correlations failed: %w", len(result.Errors), errors.Join(result.Errors...))
	}
	return result, nil
}

func (r *Runner) loadSources(ctx context.Context, logger *zap.Logger) (map[string]*timeseries.Series, error) {
	series := make(map[string]*timeseries.Series, len(r.cfg.Sources))
	for _, src := range r.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opts := &timeseries.CSVOptions{
			DateColumn:  src.DateColumn,
			ValueColumn: src.ValueColumn,
			DateFormat:  src.DateFormat,
			Label:       src.Label,
			Delimiter:   src.DelimiterRune(),
			Logger:      logger,
		}
		s, st, err := timeseries.LoadCSV(r.cfg.Path(src.File), opts)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", src.Label, err)
		}
		r.metrics.SeriesLoaded(src.Label, st)

		fields := []zap.Field{
			zap.String("series", src.Label),
			zap.Int("rows", st.Rows),
			zap.Int("loaded", st.Loaded),
			zap.Int("skipped", st.Skipped),
		}
		if st.Loaded == 0 {
			logger.Warn("Series is empty", fields...)
		} else {
			logger.Info("Loaded series", fields...)
		}
		series[src.Label] = s
	}
	return series, nil
}

func (r *Runner) autocorrelations(logger *zap.Logger, series map[string]*timeseries.Series) map[string]*stats.ACFResult {
	lags := r.cfg.Output.ACFLags
	if lags == 0 {
		return nil
	}
	out := make(map[string]*stats.ACFResult, len(series))
	for _, src := range r.cfg.Sources {
		res, err := stats.ACFWithConfidence(series[src.Label], lags)
		if err != nil {
			logger.Debug("No autocorrelation for series", zap.Error(err))
			continue
		}
		r.metrics.Autocorrelation(res)
		out[src.Label] = res
		logger.Info("Series autocorrelation",
			zap.String("series", src.Label),
			zap.Float64("lag1", res.Lag1()),
			zap.Float64("bound", res.ConfBounds),
			zap.Ints("significant_lags", res.SignificantLags()))
	}
	return out
}

func (r *Runner) renderPlots(ctx context.Context, logger *zap.Logger, series map[string]*timeseries.Series) error {
	for _, p := range r.cfg.Plots {
		if err := ctx.Err(); err != nil {
			return err
		}

		var lines []*timeseries.Series
		for _, label := range p.Series {
			s := series[label]
			if s == nil || s.Len() == 0 {
				logger.Warn("Leaving empty series out of chart",
					zap.String("chart", p.Title),
					zap.String("series", label))
				continue
			}
			if p.Normalize {
				normalized, err := s.Normalize()
				if err != nil {
					logger.Warn("Leaving series out of chart", zap.String("chart", p.Title), zap.Error(err))
					continue
				}
				s = normalized
			}
			lines = append(lines, s)
		}
		if len(lines) == 0 {
			logger.Warn("Skipping chart with no drawable series", zap.String("chart", p.Title))
			continue
		}

		chart := plot.Chart{Title: p.Title, File: r.cfg.Path(p.File)}
		if p.YMin != nil && p.YMax != nil {
			chart.Y = &plot.Range{Min: *p.YMin, Max: *p.YMax}
		}
		if err := plot.Render(chart, lines...); err != nil {
			return err
		}
		logger.Info("Rendered chart", zap.String("chart", p.Title), zap.String("file", chart.File))
	}
	return nil
}

// CorrelateAll correlates every index with every currency, index-major.
// Failed pairs are returned as errors and left out of the results.
func CorrelateAll(indexes, currencies []*timeseries.Series) ([]stats.CorrelationResult, []error) {
	var (
		results []stats.CorrelationResult
		errs    []error
	)
	for _, index := range indexes {
		for _, currency := range currencies {
			res, err := stats.Correlate(index, currency)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			results = append(results, res)
		}
	}
	return results, errs
}

func pick(series map[string]*timeseries.Series, sources []config.Source) []*timeseries.Series {
	out := make([]*timeseries.Series, 0, len(sources))
	for _, src := range sources {
		if s, ok := series[src.Label]; ok {
			out = append(out, s)
		}
	}
	return out
}
