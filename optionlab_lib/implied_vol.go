package optionlab

import (
	"fmt"
	"math"
)

const (
	minImpliedVol = 0.01
	maxImpliedVol = 3.0
)

// IVOptions bounds the implied volatility search.
type IVOptions struct {
	Tolerance     float64
	MaxIterations int
}

// DefaultIVOptions matches the Newton-Raphson settings used for chain analysis.
var DefaultIVOptions = IVOptions{Tolerance: 1e-6, MaxIterations: 100}

// ImpliedVolatility solves Price(sigma) = marketPrice. Newton-Raphson runs first from a
// Brenner-Subrahmanyam style guess; if vega collapses or the iteration cap is reached
// the solver falls back to bisection over [0.01, 3.0].
func ImpliedVolatility(marketPrice, S, K, T, r float64, typ OptionType, opts IVOptions) (float64, error) {
	const op = "implied volatility"
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultIVOptions.Tolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultIVOptions.MaxIterations
	}
	if err := validateInputs(op, S, K, T, r, minImpliedVol, typ); err != nil {
		return 0, err
	}
	if T <= 0 {
		return 0, domainError(op, "time", T, "must be positive")
	}
	if !finite(marketPrice) {
		return 0, domainError(op, "price", marketPrice, "must be finite")
	}
	lower, upper := arbitrageBounds(S, K, T, r, typ)
	if marketPrice < lower || marketPrice >= upper {
		return 0, domainError(op, "price", marketPrice, fmt.Sprintf("outside no-arbitrage bounds [%.6f, %.6f)", lower, upper))
	}

	sqrtT := math.Sqrt(T)
	vol := math.Max(0.10, math.Min(2.0, marketPrice*2.0/(S*sqrtT)))
	for i := 0; i < opts.MaxIterations; i++ {
		diff := blackScholes(S, K, T, r, vol, typ) - marketPrice
		if math.Abs(diff) < opts.Tolerance {
			return vol, nil
		}
		d1, _ := d1d2(S, K, T, r, vol)
		vega := S * normPDF(d1) * sqrtT
		if vega < 1e-10 {
			break
		}
		vol = math.Max(minImpliedVol, math.Min(maxImpliedVol, vol-diff/vega))
	}

	return bisectVolatility(marketPrice, S, K, T, r, typ, opts.Tolerance)
}

// arbitrageBounds returns [intrinsic of the forward, upper bound) for a European option.
func arbitrageBounds(S, K, T, r float64, typ OptionType) (float64, float64) {
	discount := K * math.Exp(-r*T)
	if typ == Call {
		return math.Max(0, S-discount), S
	}
	return math.Max(0, discount-S), discount
}

func bisectVolatility(marketPrice, S, K, T, r float64, typ OptionType, tol float64) (float64, error) {
	lo, hi := minImpliedVol, maxImpliedVol
	fLo := blackScholes(S, K, T, r, lo, typ) - marketPrice
	fHi := blackScholes(S, K, T, r, hi, typ) - marketPrice
	if fLo > 0 || fHi < 0 {
		return 0, fmt.Errorf("%w: price %.6f not reachable with volatility in [%.2f, %.2f]",
			ErrNoConvergence, marketPrice, minImpliedVol, maxImpliedVol)
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		f := blackScholes(S, K, T, r, mid, typ) - marketPrice
		if math.Abs(f) < tol {
			return mid, nil
		}
		if f < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, fmt.Errorf("%w: bisection stalled near %.6f", ErrNoConvergence, 0.5*(lo+hi))
}
