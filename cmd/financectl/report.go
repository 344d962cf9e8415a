package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/elhamd/elhamd-api/internal/application/dto"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Resumen financiero del periodo",
	Example: `  financectl report --period quarter
  financectl report --from 2026-01-01 --to 2026-03-31 --branch cairo --format json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("period", "month", "day|week|month|quarter|year")
	reportCmd.Flags().String("from", "", "inicio YYYY-MM-DD (rango personalizado)")
	reportCmd.Flags().String("to", "", "fin YYYY-MM-DD inclusive")
	reportCmd.Flags().String("branch", "", "filtrar por sucursal")
	reportCmd.Flags().String("format", "text", "text|json")
}

func runReport(cmd *cobra.Command, _ []string) error {
	period, _ := cmd.Flags().GetString("period")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	branch, _ := cmd.Flags().GetString("branch")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("formato no soportado: %s", format)
	}

	deps, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	ov, err := deps.Finance.GetOverview(cmd.Context(), dto.OverviewQuery{Period: period, From: from, To: to, BranchID: branch})
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ov)
	}
	return renderOverview(cmd.OutOrStdout(), ov)
}

// renderOverview tabla legible del resumen.
func renderOverview(w io.Writer, ov *dto.FinanceOverview) error {
	p := message.NewPrinter(language.English)
	money := func(d decimal.Decimal) string {
		f, _ := d.Round(2).Float64()
		return p.Sprintf("%.2f", f)
	}
	pct := func(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Periodo\t%s\t%s → %s\t\n", ov.Period, ov.From.Format("2006-01-02"), ov.To.Format("2006-01-02"))
	fmt.Fprintf(tw, "Ingresos\t%s\t%s\t\n", money(ov.TotalRevenue), pct(ov.Trend.RevenueGrowth))
	fmt.Fprintf(tw, "Gastos\t%s\t%s\t\n", money(ov.TotalExpenses), pct(ov.Trend.ExpensesGrowth))
	fmt.Fprintf(tw, "Utilidad neta\t%s\t%s\t\n", money(ov.NetProfit), pct(ov.Trend.ProfitGrowth))
	fmt.Fprintf(tw, "Margen\t%s\t\t\n", pct(ov.ProfitMargin.Mul(decimal.NewFromInt(100))))
	fmt.Fprintf(tw, "Facturas pagadas\t%s\t%d\t\n", money(ov.PaidInvoicesTotal), ov.PaidInvoicesCount)
	fmt.Fprintf(tw, "Pipeline\t%s\t\t\n", money(ov.PipelineValue))
	fmt.Fprintf(tw, "Por cobrar\t%s\t\t\n", money(ov.OutstandingReceivable))
	writeCategories(tw, "Ingresos", ov.RevenueByCategory, money)
	writeCategories(tw, "Gastos", ov.ExpensesByCategory, money)
	return tw.Flush()
}

func writeCategories(w io.Writer, title string, m map[string]decimal.Decimal, money func(decimal.Decimal) string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s / %s\t%s\t\t\n", title, k, money(m[k]))
	}
}
