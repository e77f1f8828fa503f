package posting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the entry ID is unknown.
	ErrNotFound = errors.New("journal entry not found")
	// ErrImmutable is returned when editing a POSTED or VOID entry.
	ErrImmutable = errors.New("entry is immutable")
	// ErrNotPosted is returned when voiding an entry that is not POSTED.
	ErrNotPosted = errors.New("entry is not posted")
	// ErrAlreadyPosted is returned when posting an already-POSTED entry.
	ErrAlreadyPosted = errors.New("entry is already posted")
	// ErrNotDraft is returned when submitting an entry that is not DRAFT.
	ErrNotDraft = errors.New("entry is not a draft")
	// ErrStorage is returned when the ledger rejects an append after
	// validation passed; the operation is rolled back.
	ErrStorage = errors.New("journal storage failure")
)

// Validation rules checked before posting. The numbers appear in
// violation messages so a caller can fix everything in one pass.
const (
	RuleHasLines    = 1 // entry has at least one line
	RuleOneSide     = 2 // each line has exactly one non-zero side
	RuleAccount     = 3 // each line references an active leaf account
	RuleBalanced    = 4 // sum(debits) == sum(credits), exact minor units
	RuleNonNegative = 5 // no negative debit or credit amounts
)

// ValidationError describes a single violated posting rule.
type ValidationError struct {
	Rule        int
	Line        int // 0-based line index, -1 for entry-level rules
	Description string
}

func (e ValidationError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("rule %d: %s", e.Rule, e.Description)
	}
	return fmt.Sprintf("rule %d [line %d]: %s", e.Rule, e.Line, e.Description)
}

// ValidationErrors is the full list of violated rules for an entry.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
