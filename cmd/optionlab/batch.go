package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwaldner/optionlab/internal/models"
	"github.com/jwaldner/optionlab/internal/report"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Price every contract of a CSV file and write Greeks",
	Long: `batch reads rows with the columns symbol, option_type, strike, underlying,
days_to_expiry, rate and volatility (rate and volatility as fractions) and writes the
same rows with theoretical_price and Greeks filled in.`,
	Example: "  optionlab batch -f chain.csv -o priced.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		outPath, _ := cmd.Flags().GetString("out")

		in, err := os.Open(file)
		if err != nil {
			return err
		}
		defer in.Close()

		rows, err := report.ReadContractsCSV(in)
		if err != nil {
			return err
		}
		priced, err := priceRows(cmd, rows)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return report.WriteContractsCSV(out, priced)
	},
}

func init() {
	batchCmd.Flags().StringP("file", "f", "", "Input contracts CSV")
	batchCmd.Flags().StringP("out", "o", "", "Output CSV (stdout when empty)")
	batchCmd.MarkFlagRequired("file")
}

func priceRows(cmd *cobra.Command, rows []models.ContractRow) ([]models.ContractRow, error) {
	dc := cfg.DayCount()
	contracts := make([]optionlab.OptionContract, len(rows))
	for i, r := range rows {
		typ, err := optionlab.ParseOptionType(r.OptionType)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, r.Symbol, err)
		}
		contracts[i] = optionlab.OptionContract{
			Symbol:           r.Symbol,
			StrikePrice:      r.StrikePrice,
			UnderlyingPrice:  r.UnderlyingPrice,
			TimeToExpiration: dc.YearFraction(r.DaysToExpiry),
			RiskFreeRate:     r.RiskFreeRate,
			Volatility:       r.Volatility,
			OptionType:       typ,
		}
	}

	results, err := engine.CalculateBlackScholes(cmd.Context(), contracts)
	if err != nil {
		return nil, err
	}

	out := make([]models.ContractRow, len(rows))
	for i, c := range results {
		out[i] = rows[i]
		out[i].TheoreticalPrice = c.TheoreticalPrice
		out[i].Delta = c.Delta
		out[i].Gamma = c.Gamma
		out[i].Theta = c.Theta
		out[i].Vega = c.Vega
		out[i].Rho = c.Rho
	}
	return out, nil
}
