// Package report computes period reports from the journal: profit and
// loss, budget variance, monthly trend and expense breakdown. It is
// strictly read-side; every report derives from one atomic journal
// snapshot, so a concurrent posting is either fully in or fully out.
//
// Voided entries and their reversals are both included when folding
// lines; the pair cancels exactly, which keeps report figures equal to
// the signed sums the posting engine maintains on account balances.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/ledger"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/registry"
)

// Period is a closed date range [From, To].
type Period struct {
	From time.Time
	To   time.Time
}

// Month returns the period covering one calendar month.
func Month(year int, month time.Month) Period {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 1, -1)}
}

// Service is the read-side aggregation engine.
type Service struct {
	registry *registry.Registry
	journal  *ledger.Journal
	cogs     map[string]bool // expense account codes forming cost of goods sold
}

// NewService creates a Service. cogsCodes lists the expense account
// codes (subtrees included) that count as cost of goods sold.
func NewService(reg *registry.Registry, j *ledger.Journal, cogsCodes []string) *Service {
	cogs := make(map[string]bool, len(cogsCodes))
	for _, c := range cogsCodes {
		cogs[c] = true
	}
	return &Service{registry: reg, journal: j, cogs: cogs}
}

// AccountAmount is an account with its net amount for a period, in
// minor units, signed per the account's normal balance.
type AccountAmount struct {
	AccountID uuid.UUID
	Code      string
	Name      string
	Amount    int64
}

// PnL is a profit and loss statement for a period. Margins are
// percentages; both are zero when revenue is zero.
type PnL struct {
	Period        Period
	Revenue       []AccountAmount
	TotalRevenue  int64
	COGS          []AccountAmount
	TotalCOGS     int64
	GrossProfit   int64
	Expenses      []AccountAmount
	TotalExpenses int64
	NetProfit     int64
	GrossMargin   decimal.Decimal
	NetMargin     decimal.Decimal
}

// ProfitAndLoss computes the P&L statement for a period.
func (s *Service) ProfitAndLoss(p Period) PnL {
	nets := s.periodNets(p)
	accounts := s.accountIndex()

	out := PnL{Period: p}
	for _, a := range s.registry.All() {
		amt, ok := nets[a.ID]
		if !ok || amt == 0 {
			continue
		}
		aa := AccountAmount{AccountID: a.ID, Code: a.Code, Name: a.Name, Amount: amt}
		switch a.Type {
		case model.AccountTypeIncome:
			out.Revenue = append(out.Revenue, aa)
			out.TotalRevenue += amt
		case model.AccountTypeExpense:
			if s.isCOGS(a, accounts) {
				out.COGS = append(out.COGS, aa)
				out.TotalCOGS += amt
			} else {
				out.Expenses = append(out.Expenses, aa)
				out.TotalExpenses += amt
			}
		}
	}

	out.GrossProfit = out.TotalRevenue - out.TotalCOGS
	out.NetProfit = out.GrossProfit - out.TotalExpenses
	out.GrossMargin = percentOf(out.GrossProfit, out.TotalRevenue)
	out.NetMargin = percentOf(out.NetProfit, out.TotalRevenue)
	return out
}

// periodNets folds every journal line in the period into one signed
// net per account, normal-balance rules applied. One snapshot per call.
func (s *Service) periodNets(p Period) map[uuid.UUID]int64 {
	accounts := s.accountIndex()
	nets := make(map[uuid.UUID]int64)
	for e := range s.journal.Range(p.From, p.To, ledger.Filter{}) {
		for _, l := range e.Lines {
			a, ok := accounts[l.AccountID]
			if !ok {
				continue
			}
			nets[l.AccountID] += a.BalanceDelta(l.Debit, l.Credit)
		}
	}
	return nets
}

func (s *Service) accountIndex() map[uuid.UUID]model.Account {
	idx := make(map[uuid.UUID]model.Account)
	for _, a := range s.registry.All() {
		idx[a.ID] = a
	}
	return idx
}

// isCOGS reports whether the account's code, or any ancestor's code,
// is configured as cost of goods sold.
func (s *Service) isCOGS(a model.Account, idx map[uuid.UUID]model.Account) bool {
	for {
		if s.cogs[a.Code] {
			return true
		}
		if a.ParentID == uuid.Nil {
			return false
		}
		parent, ok := idx[a.ParentID]
		if !ok {
			return false
		}
		a = parent
	}
}

// percentOf returns part/whole as a percentage with 2 decimal places,
// zero when whole is zero.
func percentOf(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(whole)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
