package optionlab

import (
	"fmt"
	"strings"
)

// OptionType is the right carried by a contract: call or put
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType accepts "call"/"put" in any case, plus the single letters C and P
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", fmt.Errorf("unknown option type %q", s)
}

func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Position is the direction of a leg
type Position int

const (
	Long  Position = 1
	Short Position = -1
)

// ParsePosition accepts long/buy/+1 and short/sell/-1
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "1", "+1":
		return Long, nil
	case "short", "sell", "-1":
		return Short, nil
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

func (p Position) Valid() bool {
	return p == Long || p == Short
}

func (p Position) String() string {
	switch p {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// MarketParameters are the market inputs shared by every leg of a strategy.
// Volatility and RiskFreeRate are annualized fractions, TimeToExpiry is in years.
type MarketParameters struct {
	Spot         float64
	Volatility   float64
	RiskFreeRate float64
	TimeToExpiry float64
}

// GreeksVector holds first and second order sensitivities.
// Vega and Rho are per 1 percentage point, Theta is per calendar day.
type GreeksVector struct {
	Delta float64 `json:"delta" csv:"delta"`
	Gamma float64 `json:"gamma" csv:"gamma"`
	Vega  float64 `json:"vega" csv:"vega"`
	Theta float64 `json:"theta" csv:"theta"`
	Rho   float64 `json:"rho" csv:"rho"`
}

func (g GreeksVector) Add(o GreeksVector) GreeksVector {
	return GreeksVector{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Vega:  g.Vega + o.Vega,
		Theta: g.Theta + o.Theta,
		Rho:   g.Rho + o.Rho,
	}
}

func (g GreeksVector) Scale(k float64) GreeksVector {
	return GreeksVector{
		Delta: g.Delta * k,
		Gamma: g.Gamma * k,
		Vega:  g.Vega * k,
		Theta: g.Theta * k,
		Rho:   g.Rho * k,
	}
}

// DayCount converts a number of days into a year fraction.
type DayCount struct {
	Name        string
	DaysPerYear float64
}

var (
	CalendarDays = DayCount{Name: "calendar", DaysPerYear: 365}
	TradingDays  = DayCount{Name: "trading", DaysPerYear: 242}
)

// ParseDayCount maps a config or request value to a convention. Empty means calendar.
func ParseDayCount(name string) (DayCount, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "calendar", "365", "act/365":
		return CalendarDays, nil
	case "trading", "242", "business":
		return TradingDays, nil
	}
	return DayCount{}, fmt.Errorf("unknown day count convention %q", name)
}

// YearFraction returns days/DaysPerYear, zero for non-positive days.
func (dc DayCount) YearFraction(days float64) float64 {
	if days <= 0 || dc.DaysPerYear <= 0 {
		return 0
	}
	return days / dc.DaysPerYear
}
