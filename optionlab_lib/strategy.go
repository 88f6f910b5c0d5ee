package optionlab

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultRangeBuffer  = 0.75
	DefaultRangeSamples = 300
)

// Curves are evaluated over the same spot samples. CurrentPnL is nil when only the
// payoff at expiry was requested.
type Curves struct {
	PriceRange     []float64
	PayoffAtExpiry []float64
	CurrentPnL     []float64
}

// AggregateGreeks sums the Greeks of every valid leg weighted by its signed quantity.
// Incomplete legs are skipped.
func AggregateGreeks(spot float64, legs []OptionLeg, T, r, sigma float64) (GreeksVector, error) {
	if err := checkSpot("aggregate greeks", spot); err != nil {
		return GreeksVector{}, err
	}
	var total GreeksVector
	for _, leg := range legs {
		if !leg.Valid() {
			continue
		}
		if err := checkLeg("aggregate greeks", leg); err != nil {
			return GreeksVector{}, err
		}
		g, err := Greeks(spot, *leg.strike, T, r, sigma, *leg.optType)
		if err != nil {
			return GreeksVector{}, err
		}
		total = total.Add(g.Scale(leg.Weight()))
	}
	return total, nil
}

// DefaultPriceRange returns samples evenly spaced points over
// [max(0, spot - buffer*spot), spot + buffer*spot].
func DefaultPriceRange(spot, buffer float64, samples int) ([]float64, error) {
	if err := checkSpot("price range", spot); err != nil {
		return nil, err
	}
	if !finite(buffer) || buffer < 0 {
		return nil, domainError("price range", "buffer", buffer, "must not be negative")
	}
	if samples < 2 {
		return nil, domainError("price range", "samples", float64(samples), "must be at least 2")
	}
	lo := math.Max(0, spot-buffer*spot)
	hi := spot + buffer*spot
	rng := floats.Span(make([]float64, samples), lo, hi)
	// step*(n-1) can round away from hi
	rng[samples-1] = hi
	return rng, nil
}

func resolveRange(spot float64, priceRange []float64) ([]float64, error) {
	if len(priceRange) == 0 {
		return DefaultPriceRange(spot, DefaultRangeBuffer, DefaultRangeSamples)
	}
	for _, s := range priceRange {
		if !finite(s) || s < 0 {
			return nil, domainError("price range", "sample", s, "must be finite and not negative")
		}
	}
	out := make([]float64, len(priceRange))
	copy(out, priceRange)
	return out, nil
}

// PayoffCurve evaluates the strategy at expiry: for each sample the sum over valid
// legs of weight*(intrinsic - premium). A nil priceRange uses DefaultPriceRange.
func PayoffCurve(spot float64, legs []OptionLeg, priceRange []float64) (Curves, error) {
	if err := checkSpot("payoff curve", spot); err != nil {
		return Curves{}, err
	}
	samples, err := resolveRange(spot, priceRange)
	if err != nil {
		return Curves{}, err
	}
	payoff := make([]float64, len(samples))
	for _, leg := range legs {
		if !leg.Valid() {
			continue
		}
		if err := checkLeg("payoff curve", leg); err != nil {
			return Curves{}, err
		}
		w := leg.Weight()
		for i, s := range samples {
			payoff[i] += w * (Intrinsic(s, *leg.strike, *leg.optType) - *leg.premium)
		}
	}
	return Curves{PriceRange: samples, PayoffAtExpiry: payoff}, nil
}

// StrategyCurves returns the payoff at expiry together with the mark-to-model P&L,
// which replaces intrinsic value with the Black-Scholes price of each leg.
func StrategyCurves(market MarketParameters, legs []OptionLeg, priceRange []float64) (Curves, error) {
	if err := checkSpot("strategy curves", market.Spot); err != nil {
		return Curves{}, err
	}
	curves, err := PayoffCurve(market.Spot, legs, priceRange)
	if err != nil {
		return Curves{}, err
	}
	pnl := make([]float64, len(curves.PriceRange))
	for _, leg := range legs {
		if !leg.Valid() {
			continue
		}
		w := leg.Weight()
		for i, s := range curves.PriceRange {
			v, err := theoreticalValue(s, *leg.strike, market.TimeToExpiry, market.RiskFreeRate, market.Volatility, *leg.optType)
			if err != nil {
				return Curves{}, err
			}
			pnl[i] += w * (v - *leg.premium)
		}
	}
	curves.CurrentPnL = pnl
	return curves, nil
}
