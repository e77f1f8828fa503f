// Package ledger holds the append-only journal of posted entries. It
// is the source of truth for everything derived (balances, reports).
// Entries arrive only through the posting engine, already validated;
// the ledger's own job is ordering, gap-free journal numbers, and
// snapshot-consistent reads.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

var (
	// ErrNotFound is returned when the entry ID or number is unknown.
	ErrNotFound = errors.New("journal entry not found")
	// ErrDuplicateNumber is a fatal invariant breach: the single-writer
	// posting path makes a duplicate journal number structurally
	// impossible, so seeing one means the books are corrupt.
	ErrDuplicateNumber = errors.New("duplicate journal number")
)

// Journal is the append-only store of posted entries, ordered by
// (date, journal number).
type Journal struct {
	mu         sync.RWMutex
	entries    []model.JournalEntry
	byID       map[uuid.UUID]int
	byNumber   map[int64]int
	nextNumber int64
}

// New creates an empty Journal. Numbering starts at 1.
func New() *Journal {
	return &Journal{
		byID:       make(map[uuid.UUID]int),
		byNumber:   make(map[int64]int),
		nextNumber: 1,
	}
}

// Append assigns the next sequential journal number to the entry and
// stores it. Returns the stored entry, number assigned. Only the
// posting engine calls this, inside its posting critical section.
func (j *Journal) Append(e model.JournalEntry) (model.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.byID[e.ID]; exists {
		return model.JournalEntry{}, fmt.Errorf("entry %s already in journal", e.ID)
	}
	e = e.Clone()
	e.JournalNumber = j.nextNumber
	j.insert(e)
	j.nextNumber++
	return e.Clone(), nil
}

// Restore inserts an entry that already carries a journal number, used
// when loading books from disk. A duplicate number fails the load.
func (j *Journal) Restore(e model.JournalEntry) error {
	if e.JournalNumber <= 0 {
		return fmt.Errorf("entry %s has no journal number", e.ID)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.byNumber[e.JournalNumber]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNumber, e.JournalNumber)
	}
	if _, exists := j.byID[e.ID]; exists {
		return fmt.Errorf("entry %s already in journal", e.ID)
	}
	j.insert(e.Clone())
	if e.JournalNumber >= j.nextNumber {
		j.nextNumber = e.JournalNumber + 1
	}
	return nil
}

// insert places e in (date, number) order and reindexes. Caller holds mu.
func (j *Journal) insert(e model.JournalEntry) {
	at := sort.Search(len(j.entries), func(i int) bool {
		o := j.entries[i]
		if !o.Date.Equal(e.Date) {
			return o.Date.After(e.Date)
		}
		return o.JournalNumber > e.JournalNumber
	})
	j.entries = append(j.entries, model.JournalEntry{})
	copy(j.entries[at+1:], j.entries[at:])
	j.entries[at] = e
	for i := at; i < len(j.entries); i++ {
		j.byID[j.entries[i].ID] = i
		j.byNumber[j.entries[i].JournalNumber] = i
	}
}

// Get returns a copy of the entry with the given ID.
func (j *Journal) Get(id uuid.UUID) (model.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	i, ok := j.byID[id]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j.entries[i].Clone(), nil
}

// ByNumber returns a copy of the entry with the given journal number.
func (j *Journal) ByNumber(n int64) (model.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	i, ok := j.byNumber[n]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: number %d", ErrNotFound, n)
	}
	return j.entries[i].Clone(), nil
}

// MarkVoid flips a stored entry's status to VOID and records the
// reason. The entry is otherwise untouched; only the posting engine
// calls this, after appending the reversal.
func (j *Journal) MarkVoid(id uuid.UUID, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	i, ok := j.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j.entries[i].Status = model.StatusVoid
	j.entries[i].VoidReason = reason
	return nil
}

// Len returns the number of stored entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// All returns copies of every entry in (date, number) order.
func (j *Journal) All() []model.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]model.JournalEntry, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.Clone()
	}
	return out
}

// NextNumber returns the number the next posted entry will receive.
func (j *Journal) NextNumber() int64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.nextNumber
}
