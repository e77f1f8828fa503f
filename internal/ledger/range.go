package ledger

import (
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// Filter narrows a Range read. Zero values mean "no constraint".
type Filter struct {
	Status          model.EntryStatus
	TransactionType model.TransactionType
	AccountID       uuid.UUID
}

func (f Filter) matches(e model.JournalEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.TransactionType != "" && e.TransactionType != f.TransactionType {
		return false
	}
	if f.AccountID != uuid.Nil {
		for _, l := range e.Lines {
			if l.AccountID == f.AccountID {
				return true
			}
		}
		return false
	}
	return true
}

// inWindow reports whether d falls in [from, to]; a zero bound is open.
func inWindow(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// Range returns a lazy, restartable sequence of entries dated within
// [from, to] that match the filter, in (date, number) order. Each
// range over the sequence snapshots the journal when iteration starts,
// so a concurrent post is either wholly visible or wholly absent.
func (j *Journal) Range(from, to time.Time, f Filter) iter.Seq[model.JournalEntry] {
	return func(yield func(model.JournalEntry) bool) {
		for _, e := range j.All() {
			if !inWindow(e.Date, from, to) || !f.matches(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// AccountLine is a journal line together with its parent entry's
// context, for account-centric ledger views.
type AccountLine struct {
	Line          model.JournalLine
	EntryID       uuid.UUID
	JournalNumber int64
	Date          time.Time
	Reference     string
	Memo          string
	Status        model.EntryStatus
}

// ByAccount returns a lazy, restartable sequence of lines referencing
// the given account within [from, to], in (date, number) order.
func (j *Journal) ByAccount(accountID uuid.UUID, from, to time.Time) iter.Seq[AccountLine] {
	return func(yield func(AccountLine) bool) {
		for _, e := range j.All() {
			if !inWindow(e.Date, from, to) {
				continue
			}
			for _, l := range e.Lines {
				if l.AccountID != accountID {
					continue
				}
				al := AccountLine{
					Line:          l,
					EntryID:       e.ID,
					JournalNumber: e.JournalNumber,
					Date:          e.Date,
					Reference:     e.Reference,
					Memo:          e.Memo,
					Status:        e.Status,
				}
				if !yield(al) {
					return
				}
			}
		}
	}
}
