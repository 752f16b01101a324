package stats

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/gorates/timeseries"
)

func seriesOf(label string, values []float64) *timeseries.Series {
	dates := make([]string, len(values))
	for i := range dates {
		dates[i] = fmt.Sprintf("2020-01-%02d", i+1)
	}
	return timeseries.New(dates, values, label)
}

func TestACF(t *testing.T) {
	// AR(1)-like process
	values := make([]float64, 30)
	for i := 1; i < len(values); i++ {
		values[i] = 0.8*values[i-1] + (float64(i%10)-5)/10
	}

	acf, err := ACF(seriesOf("ar1", values), 5)
	require.NoError(t, err)
	require.Len(t, acf, 6)
	assert.InDelta(t, 1.0, acf[0], 1e-12)
	assert.Greater(t, acf[1], 0.0)
	for _, v := range acf {
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-12)
	}
}

func TestACFKnownValues(t *testing.T) {
	// mean 2.5, denominator 5
	acf, err := ACF(seriesOf("x", []float64{1, 2, 3, 4}), 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.25, -0.3}, acf, 1e-12)
}

func TestACFCapsLag(t *testing.T) {
	acf, err := ACF(seriesOf("x", []float64{1, 3, 2}), 10)
	require.NoError(t, err)
	assert.Len(t, acf, 3)
}

func TestACFErrors(t *testing.T) {
	_, err := ACF(seriesOf("one", []float64{1}), 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ACF(seriesOf("flat", []float64{2, 2, 2}), 1)
	assert.ErrorIs(t, err, ErrZeroVariance)
	assert.Contains(t, err.Error(), `"flat"`)
}

func TestACFWithConfidence(t *testing.T) {
	values := make([]float64, 28)
	for i := range values {
		values[i] = float64(i) + math.Sin(float64(i)/10)
	}

	result, err := ACFWithConfidence(seriesOf("trend", values), 5)
	require.NoError(t, err)
	assert.Equal(t, "trend", result.Label)
	assert.InDelta(t, 1.96/math.Sqrt(28), result.ConfBounds, 1e-12)
	assert.Greater(t, result.Lag1(), result.ConfBounds)
	assert.Contains(t, result.SignificantLags(), 1)
}

func TestACFResultLag1Empty(t *testing.T) {
	assert.Equal(t, 0.0, (&ACFResult{Values: []float64{1}}).Lag1())
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}

	assert.Equal(t, []int{1, 2, 5, 6}, SignificantLags(values, 0.15))
	assert.Nil(t, SignificantLags(values, 0.9))
}
