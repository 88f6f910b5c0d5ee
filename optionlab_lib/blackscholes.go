package optionlab

import "math"

const (
	daysPerYearTheta = 365.0
	percentScale     = 100.0
)

// Intrinsic returns the exercise value of one contract at spot S.
func Intrinsic(S, K float64, typ OptionType) float64 {
	if typ == Put {
		return math.Max(K-S, 0)
	}
	return math.Max(S-K, 0)
}

func d1d2(S, K, T, r, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// Price returns the Black-Scholes value of a European option.
// At or after expiry (T <= 0) the value is intrinsic.
func Price(S, K, T, r, sigma float64, typ OptionType) (float64, error) {
	if err := validateInputs("price", S, K, T, r, sigma, typ); err != nil {
		return 0, err
	}
	if T <= 0 {
		return Intrinsic(S, K, typ), nil
	}
	return blackScholes(S, K, T, r, sigma, typ), nil
}

// blackScholes assumes validated inputs with T > 0.
func blackScholes(S, K, T, r, sigma float64, typ OptionType) float64 {
	d1, d2 := d1d2(S, K, T, r, sigma)
	discount := K * math.Exp(-r*T)
	if typ == Call {
		return S*normCDF(d1) - discount*normCDF(d2)
	}
	return discount*normCDF(-d2) - S*normCDF(-d1)
}

// Greeks returns the sensitivities of one long contract. All are zero at or after expiry.
func Greeks(S, K, T, r, sigma float64, typ OptionType) (GreeksVector, error) {
	if err := validateInputs("greeks", S, K, T, r, sigma, typ); err != nil {
		return GreeksVector{}, err
	}
	if T <= 0 {
		return GreeksVector{}, nil
	}

	sqrtT := math.Sqrt(T)
	d1, d2 := d1d2(S, K, T, r, sigma)
	pdf := normPDF(d1)
	discount := K * math.Exp(-r*T)
	decay := -S * pdf * sigma / (2 * sqrtT)

	g := GreeksVector{
		Gamma: pdf / (S * sigma * sqrtT),
		Vega:  S * pdf * sqrtT / percentScale,
	}
	if typ == Call {
		g.Delta = normCDF(d1)
		g.Theta = (decay - r*discount*normCDF(d2)) / daysPerYearTheta
		g.Rho = T * discount * normCDF(d2) / percentScale
	} else {
		g.Delta = -normCDF(-d1)
		g.Theta = (decay + r*discount*normCDF(-d2)) / daysPerYearTheta
		g.Rho = -T * discount * normCDF(-d2) / percentScale
	}
	return g, nil
}

// theoreticalValue extends Price to the S = 0 boundary of a price range, where the
// log in d1 is undefined. The limit there is 0 for a call and the discounted strike
// for a put.
func theoreticalValue(S, K, T, r, sigma float64, typ OptionType) (float64, error) {
	if S == 0 && finite(K) && finite(T) && finite(r) {
		if !finite(sigma) || sigma < 0 {
			return 0, domainError("price", "volatility", sigma, "must be finite and not negative")
		}
		if T <= 0 {
			return Intrinsic(0, K, typ), nil
		}
		if sigma == 0 {
			return 0, domainError("price", "volatility", sigma, "must be positive before expiry")
		}
		if typ == Put {
			return K * math.Exp(-r*T), nil
		}
		return 0, nil
	}
	return Price(S, K, T, r, sigma, typ)
}
