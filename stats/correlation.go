package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/gorates/timeseries"
)

var (
	// ErrInsufficientData is returned when fewer than two points are available.
	ErrInsufficientData = errors.New("need at least two aligned observations")
	// ErrZeroVariance is returned when either input is constant.
	ErrZeroVariance = errors.New("input has zero variance")
	// ErrLengthMismatch is returned when paired inputs differ in length.
	ErrLengthMismatch = errors.New("inputs differ in length")
	// ErrUndefined is returned when the coefficient is not a finite number.
	ErrUndefined = errors.New("correlation is undefined")
)

// CorrelationResult is the Pearson correlation between two labelled series.
type CorrelationResult struct {
	LabelA      string
	LabelB      string
	Coefficient float64
	PValue      float64
	N           int // Number of aligned observations
}

// Significant reports whether the p-value is below alpha.
func (r CorrelationResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// Align pairs the observations of a and b that share a date.
// Dates are returned in ascending order; values come from each series'
// date lookup, so a repeated date contributes its last value once.
func Align(a, b *timeseries.Series) (dates []string, xs, ys []float64) {
	seen := make(map[string]struct{}, a.Len())
	for _, d := range a.Dates() {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		if _, ok := b.Lookup(d); ok {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	xs = make([]float64, len(dates))
	ys = make([]float64, len(dates))
	for i, d := range dates {
		xs[i], _ = a.Lookup(d)
		ys[i], _ = b.Lookup(d)
	}
	return dates, xs, ys
}

// Pearson calculates the Pearson correlation coefficient of x and y and the
// two-sided p-value for the null hypothesis of zero correlation.
//
// The p-value uses Student's t distribution with n-2 degrees of freedom,
// evaluated as the regularized incomplete beta I_{1-r²}((n-2)/2, 1/2).
// A perfect correlation, which two points always are, has p = 0.
func Pearson(x, y []float64) (r, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInsufficientData, n)
	}
	if constant(x) || constant(y) {
		return 0, 0, ErrZeroVariance
	}

	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, 0, ErrUndefined
	}
	r = math.Max(-1, math.Min(1, r))

	if n == 2 {
		return math.Copysign(1, r), 0, nil
	}
	if math.Abs(r) == 1 {
		return r, 0, nil
	}

	df := float64(n - 2)
	p = mathext.RegIncBeta(df/2, 0.5, 1-r*r)
	return r, p, nil
}

// Correlate aligns a and b by date and computes their Pearson correlation.
func Correlate(a, b *timeseries.Series) (CorrelationResult, error) {
	_, xs, ys := Align(a, b)

	r, p, err := Pearson(xs, ys)
	if err != nil {
		return CorrelationResult{}, fmt.Errorf("correlate %q and %q: %w", a.Label(), b.Label(), err)
	}

	return CorrelationResult{
		LabelA:      a.Label(),
		LabelB:      b.Label(),
		Coefficient: r,
		PValue:      p,
		N:           len(xs),
	}, nil
}

// constant reports whether every value equals the first.
func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
