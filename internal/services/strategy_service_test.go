package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/optionlab/internal/config"
	"github.com/jwaldner/optionlab/internal/models"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

const bullCallSpread = `
ticker: aapl
spot_price: 100
volatility: 20
rate: 1
days_to_expiry: 30
options:
  - {strike: 100, premium: 5, option_type: call, position: 1}
  - {strike: 105, premium: 3, option_type: call}
  - {strike: 110, premium: 2, option_type: call, position: -1}
`

func f64(v float64) *float64 { return &v }
func str(v string) *string    { return &v }

func newService() *StrategyService {
	svc := NewStrategyService(config.Default(), optionlab.NewEngine())
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestSimulateBullCallSpread(t *testing.T) {
	svc := newService()
	req, err := svc.ParseRequest([]byte(bullCallSpread), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.Ticker)

	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.SkippedLegs)
	require.Len(t, result.StrategyDetails, 2)
	assert.Equal(t, "long", result.StrategyDetails[0].Position)
	assert.Equal(t, "short", result.StrategyDetails[1].Position)
	assert.Equal(t, "call", result.StrategyDetails[1].Type)
	assert.Equal(t, 1.0, result.StrategyDetails[1].Quantity)

	params := result.StrategyParameters
	assert.Equal(t, 30.0, params.DaysToExpiry)
	assert.Equal(t, "calendar", params.DayCount)
	assert.InDelta(t, 30.0/365.0, params.YearFraction, 1e-12)

	assert.Len(t, result.Simulation.PriceRange, optionlab.DefaultRangeSamples)
	assert.Len(t, result.Simulation.CurrentPnL, optionlab.DefaultRangeSamples)
	assert.InDelta(t, 7.0, result.MaxProfit.Value, 1e-9)
	assert.InDelta(t, -3.0, result.MaxLoss.Value, 1e-9)
	require.Len(t, result.Breakevens, 1)
	assert.InDelta(t, 103.0, result.Breakevens[0], 1e-9)

	long, err := optionlab.Greeks(100, 100, 30.0/365.0, 0.01, 0.2, optionlab.Call)
	require.NoError(t, err)
	short, err := optionlab.Greeks(100, 110, 30.0/365.0, 0.01, 0.2, optionlab.Call)
	require.NoError(t, err)
	assert.InDelta(t, long.Delta-short.Delta, result.TotalGreeks.Delta, 1e-12)
}

func TestSimulateUnlimitedBoundsJSON(t *testing.T) {
	svc := newService()
	req := &models.StrategyRequest{
		SpotPrice:     f64(150),
		VolatilityPct: f64(25),
		RatePct:       f64(5),
		DaysToExpiry:  f64(30),
		Options: []models.OptionLegInput{
			{Strike: f64(150), Premium: f64(5), OptionType: str("call"), Position: posInput("short")},
		},
	}
	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.MaxLoss.Unlimited)
	assert.False(t, result.MaxProfit.Unlimited)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Unlimited", decoded["max_loss"])
	assert.InDelta(t, 5.0, decoded["max_profit"], 1e-9)
	assert.Equal(t, []interface{}{}, decoded["skipped_legs"])
}

func TestSimulateFromExpiration(t *testing.T) {
	svc := newService()
	req := &models.StrategyRequest{
		SpotPrice:     f64(100),
		VolatilityPct: f64(20),
		RatePct:       f64(1),
		Expiration:    "2026-10-23",
		Options: []models.OptionLegInput{
			{Strike: f64(100), Premium: f64(2), OptionType: str("put"), Position: posInput("1")},
		},
	}

	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 7.0, result.StrategyParameters.DaysToExpiry)

	req.DayCount = "trading"
	result, err = svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.StrategyParameters.DaysToExpiry)
	assert.InDelta(t, 5.0/242.0, result.StrategyParameters.YearFraction, 1e-12)
}

func TestSimulateDefaultsToNextMonthlyExpiration(t *testing.T) {
	svc := newService()
	req := &models.StrategyRequest{
		SpotPrice:     f64(100),
		VolatilityPct: f64(20),
		RatePct:       f64(1),
		Options: []models.OptionLegInput{
			{Strike: f64(100), Premium: f64(2), OptionType: str("call"), Position: posInput("1")},
		},
	}
	require.NoError(t, svc.Validate(req))

	// 2026-10-16 is expiration Friday itself, so the default rolls to November
	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-20", result.StrategyParameters.Expiration)
	assert.Equal(t, 35.0, result.StrategyParameters.DaysToExpiry)

	req.DayCount = "trading"
	result, err = svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 25.0, result.StrategyParameters.DaysToExpiry)
}

func TestSimulateRejectsNonFiniteInputs(t *testing.T) {
	svc := newService()
	tests := map[string]string{
		"infinite spot": "spot_price: .inf\nvolatility: 20\nrate: 1\ndays_to_expiry: 30\n",
		"nan spot":      "spot_price: .nan\nvolatility: 20\nrate: 1\ndays_to_expiry: 30\n",
		"infinite vol":  "spot_price: 100\nvolatility: .inf\nrate: 1\ndays_to_expiry: 30\n",
		"nan rate":      "spot_price: 100\nvolatility: 20\nrate: .nan\ndays_to_expiry: 30\n",
		"infinite days": "spot_price: 100\nvolatility: 20\nrate: 1\ndays_to_expiry: .inf\n",
	}
	// the only leg has no premium, so nothing downstream would look at spot
	legs := "price_range: [90, 100, 110]\noptions:\n  - {strike: 100, option_type: call, position: 1}\n"

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseRequest([]byte(body+legs), "yaml")
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestSimulateJSONFloatPosition(t *testing.T) {
	svc := newService()
	req, err := svc.ParseRequest([]byte(`{
		"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 30,
		"options": [{"strike": 100, "premium": 2.5, "option_type": "call", "position": 1.0}]
	}`), "json")
	require.NoError(t, err)

	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.SkippedLegs)
	require.Len(t, result.StrategyDetails, 1)
	assert.Equal(t, "long", result.StrategyDetails[0].Position)
}

func TestSimulateUsesConfiguredRange(t *testing.T) {
	cfg := config.Default()
	cfg.Pricing.RangeSamples = 11
	cfg.Pricing.RangeBuffer = 0.5
	svc := NewStrategyService(cfg, optionlab.NewEngine())

	req, err := svc.ParseRequest([]byte(bullCallSpread), "yaml")
	require.NoError(t, err)
	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Simulation.PriceRange, 11)
	assert.Equal(t, 50.0, result.Simulation.PriceRange[0])
	assert.Equal(t, 150.0, result.Simulation.PriceRange[10])

	req.PriceRange = []float64{90, 100, 110}
	result, err = svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 100, 110}, result.Simulation.PriceRange)
}

func TestSimulateDomainError(t *testing.T) {
	svc := newService()
	req := &models.StrategyRequest{
		SpotPrice:     f64(100),
		VolatilityPct: f64(0),
		RatePct:       f64(1),
		DaysToExpiry:  f64(30),
		Options: []models.OptionLegInput{
			{Strike: f64(100), Premium: f64(2), OptionType: str("put"), Position: posInput("long")},
		},
	}
	_, err := svc.Simulate(context.Background(), req)
	assert.ErrorIs(t, err, optionlab.ErrDomain)
}

func TestValidateRejectsRequests(t *testing.T) {
	tests := map[string]string{
		"missing spot":      `{"volatility": 20, "rate": 1, "days_to_expiry": 30, "options": [{}]}`,
		"negative vol":      `{"spot_price": 100, "volatility": -1, "rate": 1, "days_to_expiry": 30, "options": [{}]}`,
		"missing rate":      `{"spot_price": 100, "volatility": 20, "days_to_expiry": 30, "options": [{}]}`,
		"bad expiration":    `{"spot_price": 100, "volatility": 20, "rate": 1, "expiration": "10/23/2026", "options": [{}]}`,
		"bad day count":     `{"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 30, "day_count": "lunar", "options": [{}]}`,
		"no legs":           `{"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 30}`,
		"malformed":         `{"spot_price": `,
		"negative days":     `{"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": -3, "options": [{}]}`,
		"position as array": `{"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 3, "options": [{"position": [1]}]}`,
	}
	svc := newService()
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseRequest([]byte(body), "json")
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	_, err := svc.ParseRequest([]byte("{}"), "toml")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "spread.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(bullCallSpread), 0o644))
	jsonPath := filepath.Join(dir, "spread.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"ticker": "msft", "spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 30,
		"options": [{"strike": 100, "premium": 5, "option_type": "call", "position": 1}]
	}`), 0o644))

	svc := newService()
	req, err := svc.LoadRequest(yamlPath)
	require.NoError(t, err)
	assert.Len(t, req.Options, 3)

	req, err = svc.LoadRequest(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", req.Ticker)

	_, err = svc.LoadRequest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestToLegSkipsUnparseableFields(t *testing.T) {
	leg := toLeg(models.OptionLegInput{Strike: f64(100), Premium: f64(1), OptionType: str("straddle"), Position: posInput("long")})
	assert.False(t, leg.Valid())

	leg = toLeg(models.OptionLegInput{Strike: f64(100), Premium: f64(1), OptionType: str("P"), Position: posInput("sell"), Quantity: f64(3)})
	require.True(t, leg.Valid())
	assert.Equal(t, -3.0, leg.Weight())
}

func posInput(s string) *models.PositionInput {
	p := models.PositionInput(s)
	return &p
}
