package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/jwaldner/optionlab/internal/config"
	"github.com/jwaldner/optionlab/internal/logger"
	"github.com/jwaldner/optionlab/internal/models"
	"github.com/jwaldner/optionlab/internal/utils"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid strategy request")

// StrategyService turns strategy requests into simulations
type StrategyService struct {
	config *config.Config
	engine *optionlab.Engine
	log    *logrus.Entry
	now    func() time.Time
}

// NewStrategyService creates a new strategy service
func NewStrategyService(cfg *config.Config, engine *optionlab.Engine) *StrategyService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &StrategyService{
		config: cfg,
		engine: engine,
		log:    logger.WithComponent("strategy"),
		now:    time.Now,
	}
}

// LoadRequest reads a strategy request from a .json, .yaml or .yml file.
func (s *StrategyService) LoadRequest(path string) (*models.StrategyRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return s.ParseRequest(data, format)
}

// ParseRequest decodes a request body in the given format (json or yaml) and
// validates it.
func (s *StrategyService) ParseRequest(data []byte, format string) (*models.StrategyRequest, error) {
	var req models.StrategyRequest
	switch format {
	case "json":
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: failed to decode request: %v", ErrInvalidRequest, err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: failed to decode request: %v", ErrInvalidRequest, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, format)
	}

	if err := s.Validate(&req); err != nil {
		return nil, err
	}
	req.Ticker = strings.TrimSpace(strings.ToUpper(req.Ticker))
	return &req, nil
}

// Validate checks the market fields. Leg fields are not checked here: incomplete legs
// are skipped by the simulation.
func (s *StrategyService) Validate(req *models.StrategyRequest) error {
	if req.SpotPrice == nil || !finite(*req.SpotPrice) || *req.SpotPrice <= 0 {
		return fmt.Errorf("%w: spot_price is required and must be positive and finite", ErrInvalidRequest)
	}
	if req.VolatilityPct == nil || !finite(*req.VolatilityPct) || *req.VolatilityPct < 0 {
		return fmt.Errorf("%w: volatility is required and must be finite and not negative", ErrInvalidRequest)
	}
	if req.RatePct == nil || !finite(*req.RatePct) {
		return fmt.Errorf("%w: rate is required and must be finite", ErrInvalidRequest)
	}
	if req.DaysToExpiry != nil && (!finite(*req.DaysToExpiry) || *req.DaysToExpiry < 0) {
		return fmt.Errorf("%w: days_to_expiry must be finite and not negative", ErrInvalidRequest)
	}
	if req.Expiration != "" {
		if _, err := utils.ParseExpiration(req.Expiration, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if req.DayCount != "" {
		if _, err := optionlab.ParseDayCount(req.DayCount); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if len(req.Options) == 0 {
		return fmt.Errorf("%w: at least one option leg is required", ErrInvalidRequest)
	}
	return nil
}

// Simulate prices every leg of the request and returns the Greeks, both P&L curves and
// the payoff summary.
func (s *StrategyService) Simulate(ctx context.Context, req *models.StrategyRequest) (*models.StrategyResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	dayCount := s.config.DayCount()
	if req.DayCount != "" {
		dayCount, _ = optionlab.ParseDayCount(req.DayCount)
	}
	days, expiration, err := s.daysToExpiry(req, dayCount)
	if err != nil {
		return nil, err
	}

	market := optionlab.MarketParameters{
		Spot:         *req.SpotPrice,
		Volatility:   *req.VolatilityPct / 100,
		RiskFreeRate: *req.RatePct / 100,
		TimeToExpiry: dayCount.YearFraction(days),
	}

	priceRange := req.PriceRange
	if len(priceRange) == 0 {
		priceRange, err = optionlab.DefaultPriceRange(market.Spot, s.config.Pricing.RangeBuffer, s.config.Pricing.RangeSamples)
		if err != nil {
			return nil, err
		}
	}

	legs := make([]optionlab.OptionLeg, len(req.Options))
	for i, in := range req.Options {
		legs[i] = toLeg(in)
	}

	analysis, err := s.engine.AnalyzeStrategy(ctx, market, legs, priceRange)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", req.Ticker, err)
	}

	if len(analysis.SkippedLegs) > 0 {
		s.log.WithField("legs", analysis.SkippedLegs).Warn("skipping incomplete option legs")
	}
	s.log.WithFields(logrus.Fields{
		"ticker":  req.Ticker,
		"legs":    len(analysis.Legs),
		"samples": len(analysis.Curves.PriceRange),
		"ms":      analysis.CalculationTimeMs,
	}).Info("strategy simulated")

	return buildResult(req, market, dayCount, days, expiration, analysis), nil
}

// daysToExpiry prefers days_to_expiry, then expiration, then the next monthly
// expiration. The returned date is empty when days were given directly.
func (s *StrategyService) daysToExpiry(req *models.StrategyRequest, dc optionlab.DayCount) (float64, string, error) {
	if req.DaysToExpiry != nil {
		return *req.DaysToExpiry, req.Expiration, nil
	}
	now := s.now()
	expiry := utils.NextOptionsExpiration(now)
	if req.Expiration != "" {
		var err error
		expiry, err = utils.ParseExpiration(req.Expiration, now.Location())
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	} else {
		s.log.WithField("expiration", expiry.Format(utils.DateLayout)).Debug("defaulting to next monthly expiration")
	}

	expiration := expiry.Format(utils.DateLayout)
	if dc == optionlab.TradingDays {
		return float64(utils.TradingDaysBetween(now, expiry)), expiration, nil
	}
	return float64(utils.DaysUntil(expiry, now)), expiration, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func toLeg(in models.OptionLegInput) optionlab.OptionLeg {
	var typ *optionlab.OptionType
	if in.OptionType != nil {
		if t, err := optionlab.ParseOptionType(*in.OptionType); err == nil {
			typ = &t
		}
	}
	var pos *optionlab.Position
	if in.Position != nil {
		if p, err := optionlab.ParsePosition(string(*in.Position)); err == nil {
			pos = &p
		}
	}
	leg := optionlab.LegFromFields(in.Strike, in.Premium, typ, pos)
	if in.Quantity != nil {
		leg = leg.WithQuantity(*in.Quantity)
	}
	return leg
}

func buildResult(req *models.StrategyRequest, market optionlab.MarketParameters, dc optionlab.DayCount, days float64, expiration string, a *optionlab.StrategyAnalysis) *models.StrategyResult {
	result := &models.StrategyResult{
		StrategyParameters: models.StrategyParameters{
			Ticker:        req.Ticker,
			SpotPrice:     market.Spot,
			VolatilityPct: *req.VolatilityPct,
			RatePct:       *req.RatePct,
			DaysToExpiry:  days,
			Expiration:    expiration,
			DayCount:      dc.Name,
			YearFraction:  market.TimeToExpiry,
		},
		StrategyDetails: make([]models.StrategyDetail, 0, len(a.Legs)),
		TotalGreeks:     toGreeksData(a.TotalGreeks),
		Simulation: models.Simulation{
			PriceRange:     a.Curves.PriceRange,
			PayoffAtExpiry: a.Curves.PayoffAtExpiry,
			CurrentPnL:     a.Curves.CurrentPnL,
		},
		MaxProfit:         models.ProfitBound{Value: a.Summary.MaxProfit.Value, Unlimited: a.Summary.MaxProfit.Unlimited},
		MaxLoss:           models.ProfitBound{Value: a.Summary.MaxLoss.Value, Unlimited: a.Summary.MaxLoss.Unlimited},
		Breakevens:        a.Summary.Breakevens,
		SkippedLegs:       a.SkippedLegs,
		CalculationTimeMs: a.CalculationTimeMs,
	}
	if result.Breakevens == nil {
		result.Breakevens = []float64{}
	}
	if result.SkippedLegs == nil {
		result.SkippedLegs = []int{}
	}

	for _, leg := range a.Legs {
		strike, _ := leg.Leg.Strike()
		premium, _ := leg.Leg.Premium()
		typ, _ := leg.Leg.Type()
		pos, _ := leg.Leg.Position()
		result.StrategyDetails = append(result.StrategyDetails, models.StrategyDetail{
			Strike:   strike,
			Premium:  premium,
			Type:     string(typ),
			Position: pos.String(),
			Quantity: leg.Leg.Quantity(),
			Greeks:   toGreeksData(leg.Greeks),
		})
	}
	return result
}

func toGreeksData(g optionlab.GreeksVector) models.GreeksData {
	return models.GreeksData{Delta: g.Delta, Gamma: g.Gamma, Vega: g.Vega, Theta: g.Theta, Rho: g.Rho}
}
