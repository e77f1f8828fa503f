package report

import (
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// TrendPoint is one month of revenue and expense totals (COGS
// included in expenses), for chart consumers.
type TrendPoint struct {
	Year     int
	Month    time.Month
	Revenue  int64
	Expenses int64
}

// MonthlyTrend returns a lazy, restartable sequence of month totals
// for the given number of months ending at (and including) the month
// of end. Each iteration derives from a fresh journal snapshot.
func (s *Service) MonthlyTrend(end time.Time, months int) iter.Seq[TrendPoint] {
	// Offset from the first of end's month: AddDate on a day-29..31
	// date normalizes past short months (Mar 31 minus one month is
	// "Feb 31", which is March 3) and would skip them.
	first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return func(yield func(TrendPoint) bool) {
		for i := months - 1; i >= 0; i-- {
			m := first.AddDate(0, -i, 0)
			p := Month(m.Year(), m.Month())
			nets := s.periodNets(p)

			point := TrendPoint{Year: p.From.Year(), Month: p.From.Month()}
			for _, a := range s.registry.All() {
				switch a.Type {
				case model.AccountTypeIncome:
					point.Revenue += nets[a.ID]
				case model.AccountTypeExpense:
					point.Expenses += nets[a.ID]
				}
			}
			if !yield(point) {
				return
			}
		}
	}
}

// ExpenseSlice is one expense account's share of a period's spend.
type ExpenseSlice struct {
	Code           string
	Name           string
	Amount         int64
	PercentOfTotal decimal.Decimal
}

// ExpenseBreakdown returns each expense account's period total with
// its share of total spend, largest first. Accounts with a zero net
// are omitted; shares are zero when total spend is zero.
func (s *Service) ExpenseBreakdown(p Period) []ExpenseSlice {
	nets := s.periodNets(p)

	var total int64
	var out []ExpenseSlice
	for _, a := range s.registry.All() {
		if a.Type != model.AccountTypeExpense || nets[a.ID] == 0 {
			continue
		}
		out = append(out, ExpenseSlice{Code: a.Code, Name: a.Name, Amount: nets[a.ID]})
		total += nets[a.ID]
	}
	for i := range out {
		out[i].PercentOfTotal = percentOf(out[i].Amount, total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Code < out[j].Code
	})
	return out
}
