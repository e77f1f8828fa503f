package report

import (
	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// Variance compares an account's actual period figure against its
// budget. Percent is signed so that positive is always favorable:
// expenses under budget and income over budget both report positive.
// HasBudget is false when no budget (or a zero budget) exists; Percent
// is zero in that case rather than a division error.
type Variance struct {
	Code      string
	Name      string
	Type      model.AccountType
	Actual    int64
	Budget    int64
	HasBudget bool
	Percent   decimal.Decimal
}

// variancePercent applies the sign convention for the account type.
// Callers gate on HasBudget; budget must be positive here.
func variancePercent(actual, budget int64, t model.AccountType) decimal.Decimal {
	// Expenses: under budget is favorable. Everything else: over
	// budget is favorable.
	if t == model.AccountTypeExpense {
		return percentOf(budget-actual, budget)
	}
	return percentOf(actual-budget, budget)
}

// BudgetVariance computes the variance of each budgeted account over
// the period. budgets maps account code to the budgeted minor-unit
// amount for the period; accounts without postings report a zero
// actual, and unknown codes are skipped.
func (s *Service) BudgetVariance(p Period, budgets map[string]int64) []Variance {
	nets := s.periodNets(p)

	var out []Variance
	for _, a := range s.registry.All() {
		budget, ok := budgets[a.Code]
		if !ok {
			continue
		}
		v := Variance{
			Code:      a.Code,
			Name:      a.Name,
			Type:      a.Type,
			Actual:    nets[a.ID],
			Budget:    budget,
			HasBudget: budget > 0,
		}
		if v.HasBudget {
			v.Percent = variancePercent(v.Actual, budget, a.Type)
		}
		out = append(out, v)
	}
	return out
}
