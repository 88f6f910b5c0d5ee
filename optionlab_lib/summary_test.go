package optionlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summarize(t *testing.T, legs []OptionLeg) Summary {
	t.Helper()
	curves, err := PayoffCurve(100, legs, nil)
	require.NoError(t, err)
	s, err := Summarize(curves, legs)
	require.NoError(t, err)
	return s
}

func TestSummarizeBullCallSpread(t *testing.T) {
	s := summarize(t, []OptionLeg{
		NewLeg(100, 5, Call, Long),
		NewLeg(110, 2, Call, Short),
	})

	assert.False(t, s.MaxProfit.Unlimited)
	assert.False(t, s.MaxLoss.Unlimited)
	assert.InDelta(t, 7.0, s.MaxProfit.Value, 1e-9)
	assert.InDelta(t, -3.0, s.MaxLoss.Value, 1e-9)
	require.Len(t, s.Breakevens, 1)
	assert.InDelta(t, 103.0, s.Breakevens[0], 1e-9)
}

func TestSummarizeNakedShortCall(t *testing.T) {
	s := summarize(t, []OptionLeg{NewLeg(100, 5, Call, Short)})

	assert.True(t, s.MaxLoss.Unlimited)
	assert.False(t, s.MaxProfit.Unlimited)
	assert.InDelta(t, 5.0, s.MaxProfit.Value, 1e-9)
	require.Len(t, s.Breakevens, 1)
	assert.InDelta(t, 105.0, s.Breakevens[0], 1e-9)
}

func TestSummarizeLongStraddle(t *testing.T) {
	s := summarize(t, []OptionLeg{
		NewLeg(100, 5, Call, Long),
		NewLeg(100, 5, Put, Long),
	})

	assert.True(t, s.MaxProfit.Unlimited)
	assert.False(t, s.MaxLoss.Unlimited)
	assert.InDelta(t, -10.0, s.MaxLoss.Value, 1e-9)
	require.Len(t, s.Breakevens, 2)
	assert.InDelta(t, 90.0, s.Breakevens[0], 1e-9)
	assert.InDelta(t, 110.0, s.Breakevens[1], 1e-9)
}

func TestSummarizeLongPutIncludesZeroSpot(t *testing.T) {
	// the default range starts at 25 but the put pays most at S = 0
	s := summarize(t, []OptionLeg{NewLeg(100, 5, Put, Long)})

	assert.False(t, s.MaxProfit.Unlimited)
	assert.InDelta(t, 95.0, s.MaxProfit.Value, 1e-9)
	assert.InDelta(t, -5.0, s.MaxLoss.Value, 1e-9)
}

func TestSummarizeQuantityScalesBounds(t *testing.T) {
	s := summarize(t, []OptionLeg{
		NewLeg(100, 5, Call, Long).WithQuantity(2),
		NewLeg(110, 2, Call, Short).WithQuantity(2),
	})
	assert.InDelta(t, 14.0, s.MaxProfit.Value, 1e-9)
	assert.InDelta(t, -6.0, s.MaxLoss.Value, 1e-9)
}

func TestSummarizeRejectsMismatchedCurves(t *testing.T) {
	_, err := Summarize(Curves{PriceRange: []float64{1, 2}, PayoffAtExpiry: []float64{0}}, nil)
	assert.Error(t, err)

	_, err = Summarize(Curves{}, nil)
	assert.Error(t, err)
}

func TestBreakevensExactZeroSample(t *testing.T) {
	got := breakevens([]float64{1, 2, 3, 4}, []float64{-1, 0, 0, 1})
	assert.Equal(t, []float64{2}, got)

	got = breakevens([]float64{0, 10}, []float64{-2, 2})
	assert.Equal(t, []float64{5}, got)

	assert.Empty(t, breakevens([]float64{0, 10}, []float64{1, 2}))
}
