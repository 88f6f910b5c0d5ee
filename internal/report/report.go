package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jwaldner/optionlab/internal/models"
)

var printer = message.NewPrinter(language.English)

// FormatMoney rounds half away from zero to cents and groups thousands: -1234.5 -> -$1,234.50.
// Non-finite values are printed as is.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	return sign + "$" + printer.Sprintf("%.2f", f)
}

// FormatBound renders a profit bound, or "Unlimited".
func FormatBound(b models.ProfitBound) string {
	if b.Unlimited {
		return models.Unlimited
	}
	return FormatMoney(b.Value)
}

func greekCells(g models.GreeksData) []string {
	return []string{
		fmt.Sprintf("%.4f", g.Delta),
		fmt.Sprintf("%.4f", g.Gamma),
		fmt.Sprintf("%.4f", g.Vega),
		fmt.Sprintf("%.4f", g.Theta),
		fmt.Sprintf("%.4f", g.Rho),
	}
}

// WriteGreeksTable renders one row per priced leg and the strategy total as footer.
func WriteGreeksTable(w io.Writer, result *models.StrategyResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Leg", "Position", "Qty", "Type", "Strike", "Premium", "Delta", "Gamma", "Vega", "Theta", "Rho"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, d := range result.StrategyDetails {
		row := []string{
			fmt.Sprintf("%d", i+1),
			d.Position,
			printer.Sprintf("%v", d.Quantity),
			d.Type,
			FormatMoney(d.Strike),
			FormatMoney(d.Premium),
		}
		table.Append(append(row, greekCells(d.Greeks)...))
	}

	footer := append([]string{"Total", "", "", "", "", ""}, greekCells(result.TotalGreeks)...)
	table.SetFooter(footer)
	table.Render()
}

// WriteSummary prints the strategy parameters, extremes and breakevens.
func WriteSummary(w io.Writer, result *models.StrategyResult) {
	p := result.StrategyParameters
	name := p.Ticker
	if name == "" {
		name = "Strategy"
	}
	fmt.Fprintf(w, "%s @ %s  vol %.2f%%  rate %.2f%%  %g %s days (T=%.4f)\n",
		name, FormatMoney(p.SpotPrice), p.VolatilityPct, p.RatePct, p.DaysToExpiry, p.DayCount, p.YearFraction)
	fmt.Fprintf(w, "Max profit: %s\n", FormatBound(result.MaxProfit))
	fmt.Fprintf(w, "Max loss:   %s\n", FormatBound(result.MaxLoss))

	if len(result.Breakevens) == 0 {
		fmt.Fprintln(w, "Breakevens: none")
	} else {
		parts := make([]string, len(result.Breakevens))
		for i, b := range result.Breakevens {
			parts[i] = FormatMoney(b)
		}
		fmt.Fprintf(w, "Breakevens: %s\n", strings.Join(parts, ", "))
	}
	if len(result.SkippedLegs) > 0 {
		fmt.Fprintf(w, "Skipped incomplete legs: %v\n", result.SkippedLegs)
	}
}

// CurvePoints zips the simulation curves into rows.
func CurvePoints(sim models.Simulation) []models.CurvePoint {
	points := make([]models.CurvePoint, len(sim.PriceRange))
	for i, s := range sim.PriceRange {
		points[i] = models.CurvePoint{Price: s}
		if i < len(sim.PayoffAtExpiry) {
			points[i].PayoffAtExpiry = sim.PayoffAtExpiry[i]
		}
		if i < len(sim.CurrentPnL) {
			points[i].CurrentPnL = sim.CurrentPnL[i]
		}
	}
	return points
}

// WriteCurvesCSV exports the simulation as price,payoff_at_expiry,current_pnl rows.
func WriteCurvesCSV(w io.Writer, sim models.Simulation) error {
	points := CurvePoints(sim)
	if err := gocsv.Marshal(&points, w); err != nil {
		return fmt.Errorf("failed to write curves csv: %w", err)
	}
	return nil
}

// ReadContractsCSV loads batch pricing rows.
func ReadContractsCSV(r io.Reader) ([]models.ContractRow, error) {
	var rows []models.ContractRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read contracts csv: %w", err)
	}
	return rows, nil
}

// WriteContractsCSV writes priced batch rows.
func WriteContractsCSV(w io.Writer, rows []models.ContractRow) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write contracts csv: %w", err)
	}
	return nil
}
