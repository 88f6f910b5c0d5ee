package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jwaldner/optionlab/internal/config"
	"github.com/jwaldner/optionlab/internal/logger"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

var (
	cfg    *config.Config
	engine *optionlab.Engine
)

var rootCmd = &cobra.Command{
	Use:   "optionlab",
	Short: "Black-Scholes pricing, Greeks and multi-leg payoff simulation",
	Long: `optionlab prices European options with Black-Scholes, computes their Greeks and
simulates multi-leg strategies: payoff at expiry, mark-to-model P&L, max profit/loss
and breakevens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.LogLevel = level
		}
		if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
			return err
		}

		engine = cfg.NewEngine(optionlab.WithLogger(logger.WithComponent("engine")))
		logger.Log.WithField("execution_mode", engine.ExecutionMode()).Debug("engine ready")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (error, warn, info, debug, verbose)")
	rootCmd.AddCommand(simulateCmd, priceCmd, greeksCmd, ivCmd, batchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx)
	stop()
	os.Exit(code)
}

// execute runs the root command and reports a failure once, through the logger.
func execute(ctx context.Context) int {
	defer logger.Close()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}
