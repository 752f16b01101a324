package stats

import (
	"fmt"
	"math"

	"github.com/sartorproj/gorates/timeseries"
)

// ACF calculates the sample autocorrelation of the series values for lags
// 0 to maxLag, in observation order. maxLag is capped at Len()-1.
func ACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	values := series.Values()
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("acf %q: %w: got %d", series.Label(), ErrInsufficientData, n)
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		maxLag = 0
	}
	if constant(values) {
		return nil, fmt.Errorf("acf %q: %w", series.Label(), ErrZeroVariance)
	}

	mean := series.Mean()
	// sum of squared deviations
	variance := series.Variance() * float64(n-1)

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf, nil
}

// ACFResult holds autocorrelations together with the 95% white-noise bound.
type ACFResult struct {
	Label      string
	Values     []float64
	ConfBounds float64 // 1.96/sqrt(n)
}

// Lag1 returns the lag-1 autocorrelation, or 0 when it was not computed.
func (r *ACFResult) Lag1() float64 {
	if len(r.Values) < 2 {
		return 0
	}
	return r.Values[1]
}

// SignificantLags returns the lags beyond lag 0 whose autocorrelation
// exceeds the confidence bound.
func (r *ACFResult) SignificantLags() []int {
	return SignificantLags(r.Values, r.ConfBounds)
}

// ACFWithConfidence calculates ACF with confidence bounds.
func ACFWithConfidence(series *timeseries.Series, maxLag int) (*ACFResult, error) {
	acf, err := ACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	return &ACFResult{
		Label:      series.Label(),
		Values:     acf,
		ConfBounds: 1.96 / math.Sqrt(float64(series.Len())),
	}, nil
}

// SignificantLags returns the lags where values exceed confBound in
// magnitude. Lag 0 is skipped.
func SignificantLags(values []float64, confBound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > confBound {
			significant = append(significant, i)
		}
	}
	return significant
}
