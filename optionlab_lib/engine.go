package optionlab

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// OptionContract is one row of a batch calculation
type OptionContract struct {
	Symbol           string
	StrikePrice      float64
	UnderlyingPrice  float64
	TimeToExpiration float64
	RiskFreeRate     float64
	Volatility       float64
	OptionType       OptionType

	// Output Greeks
	Delta            float64
	Gamma            float64
	Theta            float64
	Vega             float64
	Rho              float64
	TheoreticalPrice float64
}

// ExecutionMode defines how batch calculations are performed
type ExecutionMode string

const (
	ExecutionModeAuto       ExecutionMode = "auto"
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeParallel   ExecutionMode = "parallel"
)

// ParseExecutionMode maps config values; "cpu" is kept as an alias for sequential.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch s {
	case "", "auto":
		return ExecutionModeAuto, nil
	case "sequential", "cpu":
		return ExecutionModeSequential, nil
	case "parallel":
		return ExecutionModeParallel, nil
	}
	return "", fmt.Errorf("unknown execution mode %q", s)
}

const defaultBatchSize = 1000

// Engine runs the pure pricing functions over batches and strategies. It holds no
// per-call state and can be shared.
type Engine struct {
	executionMode ExecutionMode
	workers       int
	batchSize     int
	log           *logrus.Entry
}

type EngineOption func(*Engine)

func WithExecutionMode(mode ExecutionMode) EngineOption {
	return func(e *Engine) { e.executionMode = mode }
}

// WithWorkers caps the goroutines used in parallel mode. Zero means GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithBatchSize sets the batch length above which auto mode goes parallel.
func WithBatchSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

func WithLogger(entry *logrus.Entry) EngineOption {
	return func(e *Engine) {
		if entry != nil {
			e.log = entry
		}
	}
}

// NewEngine creates an engine in auto mode with a silent logger unless overridden.
func NewEngine(opts ...EngineOption) *Engine {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	e := &Engine{
		executionMode: ExecutionModeAuto,
		workers:       runtime.GOMAXPROCS(0),
		batchSize:     defaultBatchSize,
		log:           logrus.NewEntry(silent),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineForced creates an engine with the execution mode named by a config string,
// falling back to auto for unknown values. Options in opts are applied after the mode.
func NewEngineForced(mode string, opts ...EngineOption) *Engine {
	m, err := ParseExecutionMode(mode)
	if err != nil {
		m = ExecutionModeAuto
	}
	return NewEngine(append([]EngineOption{WithExecutionMode(m)}, opts...)...)
}

func (e *Engine) ExecutionMode() ExecutionMode {
	return e.executionMode
}

func (e *Engine) resolveMode(n int) ExecutionMode {
	if e.executionMode == ExecutionModeAuto {
		if n > e.batchSize && e.workers > 1 {
			return ExecutionModeParallel
		}
		return ExecutionModeSequential
	}
	return e.executionMode
}

// CalculateBlackScholes prices every contract and fills its Greeks. Results keep the
// input order; the input slice is not modified. The first invalid contract aborts
// the batch.
func (e *Engine) CalculateBlackScholes(ctx context.Context, contracts []OptionContract) ([]OptionContract, error) {
	if len(contracts) == 0 {
		return contracts, nil
	}

	start := time.Now()
	mode := e.resolveMode(len(contracts))
	results := make([]OptionContract, len(contracts))
	copy(results, contracts)

	var err error
	if mode == ExecutionModeParallel {
		err = e.calculateParallel(ctx, results)
	} else {
		err = calculateRange(ctx, results)
	}
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"contracts": len(results),
		"mode":      mode,
		"elapsed":   time.Since(start),
	}).Debug("black-scholes batch complete")

	return results, nil
}

func (e *Engine) calculateParallel(ctx context.Context, results []OptionContract) error {
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(results) + e.workers - 1) / e.workers
	for lo := 0; lo < len(results); lo += chunk {
		hi := lo + chunk
		if hi > len(results) {
			hi = len(results)
		}
		part := results[lo:hi]
		g.Go(func() error {
			return calculateRange(ctx, part)
		})
	}
	return g.Wait()
}

func calculateRange(ctx context.Context, contracts []OptionContract) error {
	for i := range contracts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c := &contracts[i]
		price, err := Price(c.UnderlyingPrice, c.StrikePrice, c.TimeToExpiration, c.RiskFreeRate, c.Volatility, c.OptionType)
		if err != nil {
			return fmt.Errorf("contract %s: %w", c.Symbol, err)
		}
		g, err := Greeks(c.UnderlyingPrice, c.StrikePrice, c.TimeToExpiration, c.RiskFreeRate, c.Volatility, c.OptionType)
		if err != nil {
			return fmt.Errorf("contract %s: %w", c.Symbol, err)
		}
		c.TheoreticalPrice = price
		c.Delta = g.Delta
		c.Gamma = g.Gamma
		c.Theta = g.Theta
		c.Vega = g.Vega
		c.Rho = g.Rho
	}
	return nil
}
