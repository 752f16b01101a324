// Package stats provides statistical tests and analysis functions for time series.
//
// # Alignment
//
// Two series observed on different calendars are compared only on the
// dates they share:
//
//	dates, xs, ys := stats.Align(sp500, btc)
//
// The shared dates come back in ascending order.
//
// # Correlation
//
// Pearson correlation with a two-sided significance test:
//
//	result, err := stats.Correlate(sp500, btc)
//	if err != nil {
//	    // stats.ErrInsufficientData or stats.ErrZeroVariance
//	}
//	fmt.Printf("r=%.4f p=%.4g n=%d\n", result.Coefficient, result.PValue, result.N)
//
// H0: the true correlation is zero. The p-value follows Student's t
// distribution with n-2 degrees of freedom.
//
// Pearson works on plain slices when the caller has already paired them:
//
//	r, p, err := stats.Pearson(x, y)
//
// # Autocorrelation
//
// ACF reports how strongly a series follows its own past values, with
// the usual 1.96/sqrt(n) white-noise bound:
//
//	res, err := stats.ACFWithConfidence(series, 10)
//	fmt.Println(res.Lag1(), res.SignificantLags())
package stats
