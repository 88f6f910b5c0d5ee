package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jwaldner/optionlab/internal/report"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

// contractInput holds the single-contract flags shared by price, greeks and iv.
type contractInput struct {
	spot, strike, days, ratePct float64
	typ                         optionlab.OptionType
	T                           float64
}

func addContractFlags(fs *pflag.FlagSet) {
	fs.Float64P("spot", "s", 0, "Underlying price")
	fs.Float64P("strike", "k", 0, "Strike price")
	fs.Float64P("days", "d", 0, "Days to expiry")
	fs.Float64P("rate", "r", 0, "Risk-free rate in percent")
	fs.StringP("type", "t", "call", "Option type (call or put)")
	fs.String("day-count", "", "Day-count convention (calendar or trading); defaults to pricing.day_count")
}

func readContractFlags(cmd *cobra.Command) (contractInput, error) {
	fs := cmd.Flags()
	var in contractInput
	in.spot, _ = fs.GetFloat64("spot")
	in.strike, _ = fs.GetFloat64("strike")
	in.days, _ = fs.GetFloat64("days")
	in.ratePct, _ = fs.GetFloat64("rate")

	typeName, _ := fs.GetString("type")
	typ, err := optionlab.ParseOptionType(typeName)
	if err != nil {
		return in, err
	}
	in.typ = typ

	dc := cfg.DayCount()
	if name, _ := fs.GetString("day-count"); name != "" {
		if dc, err = optionlab.ParseDayCount(name); err != nil {
			return in, err
		}
	}
	in.T = dc.YearFraction(in.days)
	return in, nil
}

var priceCmd = &cobra.Command{
	Use:     "price",
	Short:   "Black-Scholes price of a single European option",
	Example: "  optionlab price -s 100 -k 100 -d 30 -r 1 --vol 20 -t call",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContractFlags(cmd)
		if err != nil {
			return err
		}
		volPct, _ := cmd.Flags().GetFloat64("vol")

		price, err := optionlab.Price(in.spot, in.strike, in.T, in.ratePct/100, volPct/100, in.typ)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s strike %s: %s (T=%.6f)\n",
			in.typ, report.FormatMoney(in.spot), report.FormatMoney(in.strike), report.FormatMoney(price), in.T)
		return nil
	},
}

var greeksCmd = &cobra.Command{
	Use:     "greeks",
	Short:   "Greeks of a single European option",
	Example: "  optionlab greeks -s 100 -k 105 -d 45 -r 4 --vol 25 -t put",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContractFlags(cmd)
		if err != nil {
			return err
		}
		volPct, _ := cmd.Flags().GetFloat64("vol")

		g, err := optionlab.Greeks(in.spot, in.strike, in.T, in.ratePct/100, volPct/100, in.typ)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "delta %10.4f\n", g.Delta)
		fmt.Fprintf(out, "gamma %10.4f\n", g.Gamma)
		fmt.Fprintf(out, "vega  %10.4f  per vol point\n", g.Vega)
		fmt.Fprintf(out, "theta %10.4f  per day\n", g.Theta)
		fmt.Fprintf(out, "rho   %10.4f  per rate point\n", g.Rho)
		return nil
	},
}

var ivCmd = &cobra.Command{
	Use:     "iv",
	Short:   "Implied volatility from an option's market price",
	Example: "  optionlab iv -s 272.225 -k 280 -d 31 -r 5 --price 4.26 -t call",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContractFlags(cmd)
		if err != nil {
			return err
		}
		marketPrice, _ := cmd.Flags().GetFloat64("price")

		iv, err := optionlab.ImpliedVolatility(marketPrice, in.spot, in.strike, in.T, in.ratePct/100, in.typ, cfg.IVOptions())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "implied volatility %.4f%%\n", iv*100)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{priceCmd, greeksCmd, ivCmd} {
		addContractFlags(c.Flags())
		c.MarkFlagRequired("spot")
		c.MarkFlagRequired("strike")
	}
	priceCmd.Flags().Float64("vol", 0, "Volatility in percent")
	greeksCmd.Flags().Float64("vol", 0, "Volatility in percent")
	ivCmd.Flags().Float64("price", 0, "Observed option price")
	priceCmd.MarkFlagRequired("vol")
	greeksCmd.MarkFlagRequired("vol")
	ivCmd.MarkFlagRequired("price")
}
