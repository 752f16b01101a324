// Package gorates compares stock index closes with currency exchange rates.
//
// GoRates loads daily rate series from CSV exports (Yahoo Finance, FRED),
// aligns them on the dates they share and reports the Pearson correlation
// of every index against every currency, with normalized charts for
// eyeballing the comovement.
//
// # Features
//
//   - Immutable date-indexed series with normalization and per-day derivative
//   - Forgiving CSV loading: bad rows are skipped and counted
//   - Pearson correlation with a two-sided p-value
//   - Autocorrelation diagnostics per series
//   - PNG line charts, a correlations CSV and a Prometheus textfile
//
// # Quick Start
//
// Load two series and correlate them:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.DateColumn, opts.ValueColumn = "Date", "Adj Close"
//	sp, _, _ := timeseries.LoadCSV("data/^GSPC.csv", opts)
//	btc, _, _ := timeseries.LoadCSV("data/BTC-USD.csv", opts)
//	result, err := stats.Correlate(sp, btc)
//
// Or drive a whole study from a config file:
//
//	gorates init gorates.yaml
//	gorates run --config gorates.yaml
//
// # Packages
//
//   - timeseries: Series type, CSV loading and writing, date formats
//   - stats: alignment, Pearson correlation, autocorrelation
//   - report: correlations CSV and console summary
//   - plot: PNG line charts
//   - metrics: Prometheus run metrics
//   - config: YAML configuration
//   - analysis: the end-to-end run
package gorates
