package optionlab

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDomain is wrapped by every DomainError
	ErrDomain = errors.New("input outside pricing domain")

	ErrNoConvergence = errors.New("implied volatility did not converge")
)

// DomainError reports an input for which the closed-form formulas are undefined.
type DomainError struct {
	Op     string
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", e.Op, e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

func domainError(op, field string, value float64, reason string) error {
	return &DomainError{Op: op, Field: field, Value: value, Reason: reason}
}

// checkSpot runs before any leg is looked at, so a strategy with no valid legs still
// rejects a bad spot.
func checkSpot(op string, spot float64) error {
	if !finite(spot) || spot <= 0 {
		return domainError(op, "spot", spot, "must be positive and finite")
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// validateInputs rejects inputs that would make Price or Greeks return NaN or Inf.
func validateInputs(op string, S, K, T, r, sigma float64, typ OptionType) error {
	if !typ.Valid() {
		return &DomainError{Op: op, Field: "type", Value: math.NaN(), Reason: fmt.Sprintf("unknown option type %q", typ)}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"spot", S}, {"strike", K}, {"time", T}, {"rate", r}, {"volatility", sigma}} {
		if !finite(f.value) {
			return domainError(op, f.name, f.value, "must be finite")
		}
	}
	if S <= 0 {
		return domainError(op, "spot", S, "must be positive")
	}
	if sigma < 0 {
		return domainError(op, "volatility", sigma, "must not be negative")
	}
	if T <= 0 {
		return nil
	}
	if K <= 0 {
		return domainError(op, "strike", K, "must be positive before expiry")
	}
	if sigma == 0 {
		return domainError(op, "volatility", sigma, "must be positive before expiry")
	}
	return nil
}
