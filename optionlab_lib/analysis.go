package optionlab

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LegAnalysis carries the per-contract Greeks of one valid leg and its weighted share
// of the strategy total.
type LegAnalysis struct {
	Index    int
	Leg      OptionLeg
	Greeks   GreeksVector
	Weighted GreeksVector
}

// StrategyAnalysis is everything a strategy view needs in one pass.
type StrategyAnalysis struct {
	Market            MarketParameters
	Legs              []LegAnalysis
	SkippedLegs       []int
	TotalGreeks       GreeksVector
	Curves            Curves
	Summary           Summary
	CalculationTimeMs float64
}

// AnalyzeStrategy computes per-leg and aggregate Greeks, both P&L curves and the
// payoff summary. Incomplete legs are reported in SkippedLegs and otherwise ignored.
func (e *Engine) AnalyzeStrategy(ctx context.Context, market MarketParameters, legs []OptionLeg, priceRange []float64) (*StrategyAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkSpot("analyze strategy", market.Spot); err != nil {
		return nil, err
	}

	result := &StrategyAnalysis{Market: market}

	// PHASE 1: per-leg greeks
	greeksStart := time.Now()
	for i, leg := range legs {
		if !leg.Valid() {
			result.SkippedLegs = append(result.SkippedLegs, i)
			continue
		}
		if err := checkLeg("analyze strategy", leg); err != nil {
			return nil, err
		}
		g, err := Greeks(market.Spot, *leg.strike, market.TimeToExpiry, market.RiskFreeRate, market.Volatility, *leg.optType)
		if err != nil {
			return nil, err
		}
		weighted := g.Scale(leg.Weight())
		result.Legs = append(result.Legs, LegAnalysis{Index: i, Leg: leg, Greeks: g, Weighted: weighted})
		result.TotalGreeks = result.TotalGreeks.Add(weighted)
	}
	greeksMs := msSince(greeksStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// PHASE 2: curves
	curvesStart := time.Now()
	curves, err := StrategyCurves(market, legs, priceRange)
	if err != nil {
		return nil, err
	}
	result.Curves = curves
	curvesMs := msSince(curvesStart)

	// PHASE 3: summary
	summary, err := Summarize(curves, legs)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	result.CalculationTimeMs = greeksMs + curvesMs
	e.log.WithFields(logrus.Fields{
		"legs":      len(result.Legs),
		"skipped":   len(result.SkippedLegs),
		"samples":   len(curves.PriceRange),
		"greeks_ms": greeksMs,
		"curves_ms": curvesMs,
	}).Debug("strategy analysis complete")

	return result, nil
}

func msSince(t time.Time) float64 {
	return time.Since(t).Seconds() * 1000
}
