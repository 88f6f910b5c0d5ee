package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwaldner/optionlab/internal/audit"
	"github.com/jwaldner/optionlab/internal/config"
	"github.com/jwaldner/optionlab/internal/logger"
	"github.com/jwaldner/optionlab/internal/models"
	"github.com/jwaldner/optionlab/internal/report"
	"github.com/jwaldner/optionlab/internal/services"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a multi-leg strategy from a YAML or JSON request",
	Example: `  optionlab simulate -f examples/strategies/bull_call_spread.yaml
  optionlab simulate -f spread.json --json
  optionlab simulate -f spread.yaml --csv exports/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		csvPath, _ := cmd.Flags().GetString("csv")
		asJSON, _ := cmd.Flags().GetBool("json")
		auditDir, _ := cmd.Flags().GetString("audit")

		svc := services.NewStrategyService(cfg, engine)
		req, err := svc.LoadRequest(file)
		if err != nil {
			return err
		}
		result, err := svc.Simulate(cmd.Context(), req)
		if err != nil {
			return err
		}

		if auditDir != "" {
			trail := audit.New(auditDir, req.Ticker)
			trail.AddSection("request", req)
			trail.AddSection("strategy_parameters", result.StrategyParameters)
			trail.AddSection("strategy_details", result.StrategyDetails)
			trail.AddSection("summary", map[string]interface{}{
				"total_greeks": result.TotalGreeks,
				"max_profit":   result.MaxProfit,
				"max_loss":     result.MaxLoss,
				"breakevens":   result.Breakevens,
				"skipped_legs": result.SkippedLegs,
			})
			if _, _, err := trail.Finalize(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			report.WriteSummary(out, result)
			report.WriteGreeksTable(out, result)
		}

		if csvPath != "" {
			path, err := writeCurves(csvPath, file, req, result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "curves written to %s\n", path)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringP("file", "f", "", "Strategy request file (.yaml, .yml or .json)")
	simulateCmd.Flags().String("csv", "", "Write the simulated curves to this CSV file, or into this directory using csv.filename_format")
	simulateCmd.Flags().Bool("json", false, "Print the full result as JSON")
	simulateCmd.Flags().String("audit", "", "Write an audit trail of inputs and results into this directory")
	simulateCmd.MarkFlagRequired("file")
}

// writeCurves resolves a directory target with the configured filename template.
func writeCurves(target, requestFile string, req *models.StrategyRequest, result *models.StrategyResult) (string, error) {
	path := target
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		strategy := trimExt(filepath.Base(requestFile))
		if req.Ticker != "" {
			strategy = req.Ticker + "-" + strategy
		}
		expDate := result.StrategyParameters.Expiration
		if expDate == "" {
			expDate = fmt.Sprintf("%gd", result.StrategyParameters.DaysToExpiry)
		}
		name := config.FormatCurveFilename(cfg.CSV.FilenameFormat, strategy, expDate, time.Now().Format("20060102-150405"))
		path = filepath.Join(target, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := report.WriteCurvesCSV(f, result.Simulation); err != nil {
		return "", err
	}
	logger.WithComponent("export").WithField("path", path).Debug("curves exported")
	return path, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
