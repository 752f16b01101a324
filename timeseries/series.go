package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the canonical date key format for every Series.
const DateLayout = "2006-01-02"

var (
	// ErrEmptySeries is returned by transforms that need at least one observation.
	ErrEmptySeries = errors.New("series has no observations")
	// ErrTooShort is returned by transforms that need at least two observations.
	ErrTooShort = errors.New("series needs at least two observations")
	// ErrZeroScale is returned when normalizing a series whose largest magnitude is zero.
	ErrZeroScale = errors.New("cannot normalize series with zero scale")
	// ErrNonFinite is returned when a transform would produce NaN or Inf values.
	ErrNonFinite = errors.New("series contains non-finite values")
)

// Series is an ordered sequence of (date, value) observations with a label.
//
// A Series is immutable once built: accessors return copies and transforms
// return a new Series. Dates keep their insertion order and may repeat; the
// lookup index keeps the last value seen for a repeated date.
type Series struct {
	label  string
	dates  []string
	values []float64
	byDate map[string]float64
}

// Point is a single observation.
type Point struct {
	Date  string
	Value float64
}

// New creates a series from parallel dates and values.
// Both inputs are truncated to the shorter length. Dates are not validated.
func New(dates []string, values []float64, label string) *Series {
	n := len(dates)
	if len(values) < n {
		n = len(values)
	}

	s := &Series{
		label:  label,
		dates:  make([]string, n),
		values: make([]float64, n),
		byDate: make(map[string]float64, n),
	}
	copy(s.dates, dates[:n])
	copy(s.values, values[:n])

	for i, d := range s.dates {
		s.byDate[d] = s.values[i]
	}

	return s
}

// Label returns the series label.
func (s *Series) Label() string {
	return s.label
}

// WithLabel returns a copy of the series carrying a different label.
func (s *Series) WithLabel(label string) *Series {
	return New(s.dates, s.values, label)
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.values)
}

// Dates returns a copy of the date keys in insertion order.
func (s *Series) Dates() []string {
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}

// Values returns a copy of the observations in insertion order.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// At returns the i-th observation. It panics if i is out of range.
func (s *Series) At(i int) Point {
	return Point{Date: s.dates[i], Value: s.values[i]}
}

// Points returns the observations in insertion order.
func (s *Series) Points() []Point {
	pts := make([]Point, len(s.values))
	for i := range s.values {
		pts[i] = Point{Date: s.dates[i], Value: s.values[i]}
	}
	return pts
}

// Lookup returns the value recorded for date.
func (s *Series) Lookup(date string) (float64, bool) {
	v, ok := s.byDate[date]
	return v, ok
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series, or NaN if it is empty.
func (s *Series) Min() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	min := s.values[0]
	for _, v := range s.values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value in the series, or NaN if it is empty.
func (s *Series) Max() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	max := s.values[0]
	for _, v := range s.values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Median returns the median value of the series, or NaN if it is empty.
func (s *Series) Median() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Slice returns the observations from start to end (exclusive).
// Out of range bounds are clamped.
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.values) {
		end = len(s.values)
	}
	if start >= end {
		return New(nil, nil, s.label)
	}
	return New(s.dates[start:end], s.values[start:end], s.label)
}

// Normalize scales the series so its largest magnitude becomes 1.
//
// The scale is max(Max, |Min|). Signs and ratios are preserved; dates and
// label are carried over unchanged.
func (s *Series) Normalize() (*Series, error) {
	if len(s.values) == 0 {
		return nil, fmt.Errorf("normalize %q: %w", s.label, ErrEmptySeries)
	}

	scale := math.Max(s.Max(), math.Abs(s.Min()))
	if scale == 0 {
		return nil, fmt.Errorf("normalize %q: %w", s.label, ErrZeroScale)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("normalize %q: %w", s.label, ErrNonFinite)
	}

	result := make([]float64, len(s.values))
	for i, v := range s.values {
		result[i] = v / scale
	}

	return New(s.dates, result, s.label), nil
}

// Derivative returns the per-day rate of change between adjacent observations.
//
// Point i of the result is dated dates[i] and holds
// (values[i+1]-values[i]) / days(dates[i], dates[i+1]). Pairs on the same day
// are skipped.
func (s *Series) Derivative() (*Series, error) {
	if len(s.values) < 2 {
		return nil, fmt.Errorf("derivative %q: %w", s.label, ErrTooShort)
	}

	days := make([]time.Time, len(s.dates))
	for i, d := range s.dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("derivative %q: date %d: %w", s.label, i, err)
		}
		days[i] = t
	}

	dates := make([]string, 0, len(s.values)-1)
	rates := make([]float64, 0, len(s.values)-1)
	for i := 0; i < len(s.values)-1; i++ {
		deltaDays := daysBetween(days[i], days[i+1])
		if deltaDays == 0 {
			continue
		}
		delta := s.values[i+1] - s.values[i]
		dates = append(dates, s.dates[i])
		rates = append(rates, delta/float64(deltaDays))
	}

	return New(dates, rates, s.label), nil
}

// daysBetween returns the whole number of calendar days from a to b.
// Both are UTC midnights as produced by time.Parse on DateLayout.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
