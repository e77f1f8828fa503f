package posting

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// AccountResolver answers whether an account may carry a posted line.
// Postable fails for unknown, inactive and non-leaf accounts.
type AccountResolver interface {
	Postable(id uuid.UUID) (model.Account, error)
}

// Validate checks every posting rule against the entry and returns all
// violations, not just the first; the caller needs the complete list
// to fix an entry in a single retry. A nil result means postable.
func Validate(e model.JournalEntry, accounts AccountResolver) ValidationErrors {
	var errs ValidationErrors

	if len(e.Lines) == 0 {
		errs = append(errs, ValidationError{
			Rule:        RuleHasLines,
			Line:        -1,
			Description: "entry has no lines",
		})
	}

	for i, l := range e.Lines {
		if l.Debit < 0 || l.Credit < 0 {
			errs = append(errs, ValidationError{
				Rule:        RuleNonNegative,
				Line:        i,
				Description: "debit and credit must not be negative",
			})
		}

		hasDebit := l.Debit != 0
		hasCredit := l.Credit != 0
		if hasDebit == hasCredit {
			errs = append(errs, ValidationError{
				Rule:        RuleOneSide,
				Line:        i,
				Description: "line must have exactly one of debit or credit",
			})
		}

		if _, err := accounts.Postable(l.AccountID); err != nil {
			errs = append(errs, ValidationError{
				Rule:        RuleAccount,
				Line:        i,
				Description: err.Error(),
			})
		}
	}

	if d, c := e.TotalDebit(), e.TotalCredit(); d != c {
		errs = append(errs, ValidationError{
			Rule:        RuleBalanced,
			Line:        -1,
			Description: fmt.Sprintf("debits (%d) != credits (%d)", d, c),
		})
	}

	return errs
}
