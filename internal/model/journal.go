package model

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft   EntryStatus = "draft"
	StatusPending EntryStatus = "pending"
	StatusPosted  EntryStatus = "posted"
	StatusVoid    EntryStatus = "void"
)

// TransactionType tags a journal entry with its business origin.
type TransactionType string

const (
	TxnGeneral    TransactionType = "general"
	TxnSales      TransactionType = "sales"
	TxnPurchase   TransactionType = "purchase"
	TxnPayment    TransactionType = "payment"
	TxnReceipt    TransactionType = "receipt"
	TxnAdjustment TransactionType = "adjustment"
)

// JournalLine is one side of a double-entry. Exactly one of Debit or
// Credit is non-zero on a valid line; both are minor-unit amounts >= 0.
type JournalLine struct {
	AccountID   uuid.UUID
	Description string
	Debit       int64
	Credit      int64
}

// JournalEntry is a group of lines recording a single financial event.
// JournalNumber is zero until the entry is posted.
type JournalEntry struct {
	ID              uuid.UUID
	JournalNumber   int64
	Date            time.Time
	Reference       string
	Memo            string
	TransactionType TransactionType
	Status          EntryStatus
	Lines           []JournalLine
	VoidReason      string    // set on the original entry when voided
	Reverses        uuid.UUID // set on a reversal entry, points at the voided original
}

// TotalDebit returns the sum of all debit amounts in minor units.
func (e JournalEntry) TotalDebit() int64 {
	var sum int64
	for _, l := range e.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredit returns the sum of all credit amounts in minor units.
func (e JournalEntry) TotalCredit() int64 {
	var sum int64
	for _, l := range e.Lines {
		sum += l.Credit
	}
	return sum
}

// Balanced reports whether debits equal credits exactly.
func (e JournalEntry) Balanced() bool {
	return e.TotalDebit() == e.TotalCredit()
}

// Clone returns a deep copy of the entry. Callers that hand entries
// across the engine boundary clone first so internal state is never
// aliased by the caller.
func (e JournalEntry) Clone() JournalEntry {
	cp := e
	cp.Lines = make([]JournalLine, len(e.Lines))
	copy(cp.Lines, e.Lines)
	return cp
}
