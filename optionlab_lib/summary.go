package optionlab

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Bound is a profit or loss extreme. Unlimited bounds leave Value at the largest
// magnitude seen on the evaluated range.
type Bound struct {
	Value     float64
	Unlimited bool
}

type Summary struct {
	MaxProfit  Bound
	MaxLoss    Bound
	Breakevens []float64
}

// Summarize derives the strategy extremes and breakevens from its payoff at expiry.
//
// The payoff is piecewise linear with kinks at the strikes, so the extremes over
// [0, +inf) are found among the strikes, S = 0 and the curve samples, unless the net
// call weight is non-zero, in which case the payoff grows without bound to the right.
func Summarize(curves Curves, legs []OptionLeg) (Summary, error) {
	if len(curves.PriceRange) != len(curves.PayoffAtExpiry) || len(curves.PriceRange) == 0 {
		return Summary{}, fmt.Errorf("summarize: payoff curve has %d samples for %d prices",
			len(curves.PayoffAtExpiry), len(curves.PriceRange))
	}

	values := make([]float64, 0, len(curves.PayoffAtExpiry)+len(legs)+1)
	values = append(values, curves.PayoffAtExpiry...)
	values = append(values, payoffAt(0, legs))

	var netCalls float64
	for _, leg := range legs {
		if !leg.Valid() {
			continue
		}
		values = append(values, payoffAt(*leg.strike, legs))
		if *leg.optType == Call {
			netCalls += leg.Weight()
		}
	}

	maxValue, err := stats.Max(values)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	minValue, err := stats.Min(values)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}

	return Summary{
		MaxProfit:  Bound{Value: maxValue, Unlimited: netCalls > 0},
		MaxLoss:    Bound{Value: minValue, Unlimited: netCalls < 0},
		Breakevens: breakevens(curves.PriceRange, curves.PayoffAtExpiry),
	}, nil
}

func payoffAt(s float64, legs []OptionLeg) float64 {
	var total float64
	for _, leg := range legs {
		if !leg.Valid() {
			continue
		}
		total += leg.Weight() * (Intrinsic(s, *leg.strike, *leg.optType) - *leg.premium)
	}
	return total
}

// breakevens returns the zero crossings of y(x), linearly interpolated between samples.
func breakevens(x, y []float64) []float64 {
	var out []float64
	for i := range y {
		if y[i] == 0 {
			if i == 0 || y[i-1] != 0 {
				out = append(out, x[i])
			}
			continue
		}
		if i+1 < len(y) && y[i+1] != 0 && (y[i] < 0) != (y[i+1] < 0) {
			t := y[i] / (y[i] - y[i+1])
			out = append(out, x[i]+t*(x[i+1]-x[i]))
		}
	}
	return out
}
