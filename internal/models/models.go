package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StrategyRequest describes a multi-leg strategy to simulate. Percent fields follow
// the strategy builder: 25 means 25%.
type StrategyRequest struct {
	Ticker        string           `json:"ticker" yaml:"ticker"`
	SpotPrice     *float64         `json:"spot_price" yaml:"spot_price"`
	VolatilityPct *float64         `json:"volatility" yaml:"volatility"`
	RatePct       *float64         `json:"rate" yaml:"rate"`
	DaysToExpiry  *float64         `json:"days_to_expiry,omitempty" yaml:"days_to_expiry"`
	Expiration    string           `json:"expiration,omitempty" yaml:"expiration"` // YYYY-MM-DD, used when days_to_expiry is absent
	DayCount      string           `json:"day_count,omitempty" yaml:"day_count"`   // calendar or trading
	PriceRange    []float64        `json:"price_range,omitempty" yaml:"price_range"`
	Options       []OptionLegInput `json:"options" yaml:"options"`
}

// OptionLegInput is one leg as submitted. Any field may be missing; such legs are
// reported as skipped rather than rejected.
type OptionLegInput struct {
	Strike     *float64       `json:"strike" yaml:"strike"`
	Premium    *float64       `json:"premium" yaml:"premium"`
	OptionType *string        `json:"option_type" yaml:"option_type"`
	Position   *PositionInput `json:"position" yaml:"position"`
	Quantity   *float64       `json:"quantity,omitempty" yaml:"quantity"`
}

// PositionInput accepts 1/-1 as numbers or long/short/buy/sell as strings.
type PositionInput string

func (p *PositionInput) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("position must be a number or string: %w", err)
		}
		*p = PositionInput(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("position must be a number or string: %w", err)
	}
	*p = PositionInput(strings.TrimSpace(s))
	return nil
}

func (p *PositionInput) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*p = PositionInput(strconv.Itoa(v))
	case float64:
		*p = PositionInput(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		*p = PositionInput(strings.TrimSpace(v))
	default:
		return fmt.Errorf("position must be a number or string, got %T", raw)
	}
	return nil
}

type GreeksData struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

type StrategyParameters struct {
	Ticker        string  `json:"ticker,omitempty"`
	SpotPrice     float64 `json:"spot_price"`
	VolatilityPct float64 `json:"volatility_pct"`
	RatePct       float64 `json:"rate_pct"`
	DaysToExpiry  float64 `json:"days_to_expiry"`
	Expiration    string  `json:"expiration,omitempty"`
	DayCount      string  `json:"day_count"`
	YearFraction  float64 `json:"year_fraction"`
}

// StrategyDetail is the per-contract view of one valid leg.
type StrategyDetail struct {
	Strike   float64    `json:"strike"`
	Premium  float64    `json:"premium"`
	Type     string     `json:"type"`
	Position string     `json:"position"`
	Quantity float64    `json:"quantity"`
	Greeks   GreeksData `json:"greeks"`
}

type Simulation struct {
	PriceRange     []float64 `json:"price_range"`
	PayoffAtExpiry []float64 `json:"payoff_at_expiry"`
	CurrentPnL     []float64 `json:"current_pnl"`
}

// ProfitBound marshals as a number, or as "Unlimited" when the payoff is unbounded.
type ProfitBound struct {
	Value     float64
	Unlimited bool
}

const Unlimited = "Unlimited"

func (b ProfitBound) MarshalJSON() ([]byte, error) {
	if b.Unlimited {
		return json.Marshal(Unlimited)
	}
	return json.Marshal(b.Value)
}

func (b *ProfitBound) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Unlimited {
			return fmt.Errorf("unexpected bound %q", s)
		}
		*b = ProfitBound{Unlimited: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = ProfitBound{Value: v}
	return nil
}

// StrategyResult is the response of a strategy simulation.
type StrategyResult struct {
	StrategyParameters StrategyParameters `json:"strategy_parameters"`
	StrategyDetails    []StrategyDetail   `json:"strategy_details"`
	TotalGreeks        GreeksData         `json:"total_greeks"`
	Simulation         Simulation         `json:"simulation"`
	MaxProfit          ProfitBound        `json:"max_profit"`
	MaxLoss            ProfitBound        `json:"max_loss"`
	Breakevens         []float64          `json:"breakevens"`
	SkippedLegs        []int              `json:"skipped_legs"`
	CalculationTimeMs  float64            `json:"calculation_time_ms"`
}

// CurvePoint is one row of the curve CSV export.
type CurvePoint struct {
	Price          float64 `csv:"price"`
	PayoffAtExpiry float64 `csv:"payoff_at_expiry"`
	CurrentPnL     float64 `csv:"current_pnl"`
}

// ContractRow is one row of a batch pricing CSV. Greek columns are filled on output.
type ContractRow struct {
	Symbol           string  `csv:"symbol"`
	OptionType       string  `csv:"option_type"`
	StrikePrice      float64 `csv:"strike"`
	UnderlyingPrice  float64 `csv:"underlying"`
	DaysToExpiry     float64 `csv:"days_to_expiry"`
	RiskFreeRate     float64 `csv:"rate"`
	Volatility       float64 `csv:"volatility"`
	TheoreticalPrice float64 `csv:"theoretical_price"`
	Delta            float64 `csv:"delta"`
	Gamma            float64 `csv:"gamma"`
	Theta            float64 `csv:"theta"`
	Vega             float64 `csv:"vega"`
	Rho              float64 `csv:"rho"`
}
