package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/money"
	"github.com/tillbook-dev/tillbook/internal/report"
	"github.com/tillbook-dev/tillbook/internal/store"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports",
	}
	reportCmd.AddCommand(newReportPnLCommand())
	reportCmd.AddCommand(newReportTrendCommand())
	reportCmd.AddCommand(newReportExpensesCommand())
	reportCmd.AddCommand(newReportVarianceCommand())
	return reportCmd
}

// periodFlags resolves --month (or --from/--to) into a Period. --month
// wins when both are given; with nothing given the current month is
// used.
func periodFlags(month, from, to string) (report.Period, error) {
	if month != "" {
		m, err := parseMonth(month)
		if err != nil {
			return report.Period{}, err
		}
		return report.Month(m.Year(), m.Month()), nil
	}
	if from == "" && to == "" {
		now := time.Now().UTC()
		return report.Month(now.Year(), now.Month()), nil
	}
	var p report.Period
	var err error
	if from != "" {
		if p.From, err = parseDate(from); err != nil {
			return report.Period{}, err
		}
	}
	if to != "" {
		if p.To, err = parseDate(to); err != nil {
			return report.Period{}, err
		}
	}
	return p, nil
}

func addPeriodFlags(cmd *cobra.Command, month, from, to *string) {
	cmd.Flags().StringVar(month, "month", "", "report month (YYYY-MM)")
	cmd.Flags().StringVar(from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", "", "end date (YYYY-MM-DD)")
}

func periodLabel(p report.Period) string {
	switch {
	case p.From.IsZero() && p.To.IsZero():
		return "all time"
	case p.From.IsZero():
		return "through " + p.To.Format(dateFormat)
	case p.To.IsZero():
		return "from " + p.From.Format(dateFormat)
	default:
		return p.From.Format(dateFormat) + " to " + p.To.Format(dateFormat)
	}
}

func newReportPnLCommand() *cobra.Command {
	var month, from, to string

	cmd := &cobra.Command{
		Use:   "pnl",
		Short: "Profit and loss statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			p, err := periodFlags(month, from, to)
			if err != nil {
				return err
			}

			pnl := b.Reports.ProfitAndLoss(p)
			cmd.Printf("%s — Profit & Loss, %s\n\n", b.Config.Business.Name, periodLabel(p))

			cmd.Println("Revenue")
			for _, a := range pnl.Revenue {
				cmd.Printf("  %-6s %-30s %14s\n", a.Code, a.Name, money.Format(a.Amount))
			}
			cmd.Printf("  %-37s %14s\n\n", "Total revenue", money.Format(pnl.TotalRevenue))

			cmd.Println("Cost of goods sold")
			for _, a := range pnl.COGS {
				cmd.Printf("  %-6s %-30s %14s\n", a.Code, a.Name, money.Format(a.Amount))
			}
			cmd.Printf("  %-37s %14s\n", "Total COGS", money.Format(pnl.TotalCOGS))
			cmd.Printf("  %-37s %14s  (%s%%)\n\n", "Gross profit",
				money.Format(pnl.GrossProfit), pnl.GrossMargin.StringFixed(1))

			cmd.Println("Operating expenses")
			for _, a := range pnl.Expenses {
				cmd.Printf("  %-6s %-30s %14s\n", a.Code, a.Name, money.Format(a.Amount))
			}
			cmd.Printf("  %-37s %14s\n\n", "Total expenses", money.Format(pnl.TotalExpenses))

			cmd.Printf("Net profit %42s  (%s%%)\n",
				money.Format(pnl.NetProfit), pnl.NetMargin.StringFixed(1))
			return nil
		},
	}

	addPeriodFlags(cmd, &month, &from, &to)
	return cmd
}

func newReportTrendCommand() *cobra.Command {
	var months int
	var end string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly revenue and expense trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			endT := time.Now().UTC()
			if end != "" {
				if endT, err = parseMonth(end); err != nil {
					return err
				}
			}
			if months < 1 {
				return fmt.Errorf("--months must be at least 1")
			}

			cmd.Printf("%-8s %14s %14s %14s\n", "Month", "Revenue", "Expenses", "Net")
			for pt := range b.Reports.MonthlyTrend(endT, months) {
				cmd.Printf("%04d-%02d  %14s %14s %14s\n",
					pt.Year, pt.Month,
					money.Format(pt.Revenue), money.Format(pt.Expenses),
					money.Format(pt.Revenue-pt.Expenses))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 6, "number of months to include")
	cmd.Flags().StringVar(&end, "end", "", "final month (YYYY-MM, default current)")
	return cmd
}

func newReportExpensesCommand() *cobra.Command {
	var month, from, to string

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expense breakdown by account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			p, err := periodFlags(month, from, to)
			if err != nil {
				return err
			}

			cmd.Printf("%s — Expenses, %s\n\n", b.Config.Business.Name, periodLabel(p))
			var total int64
			for _, s := range b.Reports.ExpenseBreakdown(p) {
				cmd.Printf("  %-6s %-30s %14s  %6s%%\n",
					s.Code, s.Name, money.Format(s.Amount), s.PercentOfTotal.StringFixed(1))
				total += s.Amount
			}
			cmd.Printf("  %-37s %14s\n", "Total", money.Format(total))
			return nil
		},
	}

	addPeriodFlags(cmd, &month, &from, &to)
	return cmd
}

func newReportVarianceCommand() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Actual vs budget by account",
		Long: `Variance compares each budgeted account's actual for the month
against its monthly budget from tillbook.yaml. The percentage is signed
so that positive is always favorable: expenses under budget and income
over budget both show positive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			m := time.Now().UTC()
			if month != "" {
				if m, err = parseMonth(month); err != nil {
					return err
				}
			}
			budgets, err := monthlyBudgets(b)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				return fmt.Errorf("no budgets configured in tillbook.yaml")
			}

			p := report.Month(m.Year(), m.Month())
			cmd.Printf("%s — Budget variance, %04d-%02d\n\n",
				b.Config.Business.Name, m.Year(), m.Month())
			cmd.Printf("  %-6s %-26s %14s %14s %9s\n", "Code", "Account", "Actual", "Budget", "Var")
			for _, v := range b.Reports.BudgetVariance(p, budgets) {
				pct := "-"
				if v.HasBudget {
					pct = v.Percent.StringFixed(1) + "%"
				}
				cmd.Printf("  %-6s %-26s %14s %14s %9s\n",
					v.Code, v.Name, money.Format(v.Actual), money.Format(v.Budget), pct)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "report month (YYYY-MM, default current)")
	return cmd
}

// monthlyBudgets parses the config budget lines into minor units keyed
// by account code.
func monthlyBudgets(b *store.Books) (map[string]int64, error) {
	budgets := make(map[string]int64, len(b.Config.Budgets))
	for _, bl := range b.Config.Budgets {
		amount, err := money.Parse(bl.Monthly)
		if err != nil {
			return nil, fmt.Errorf("budget for %s: %w", bl.AccountCode, err)
		}
		budgets[bl.AccountCode] = amount
	}
	return budgets, nil
}
