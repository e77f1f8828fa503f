// Package posting owns the journal entry lifecycle: DRAFT entries are
// freely mutable and live outside the ledger; posting validates an
// entry, assigns its journal number, appends it and moves account
// balances as one exclusive critical section; voiding reverses a
// posted entry with a mirror-image reversal. Nothing here ever leaves
// a partially applied state observable.
package posting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/ledger"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/registry"
)

// Engine validates and transitions journal entries between lifecycle
// states. post/void are serialized by postMu (single-writer), which
// keeps the journal number sequence gap-free and balance updates
// un-torn.
type Engine struct {
	postMu   sync.Mutex
	registry *registry.Registry
	journal  *ledger.Journal

	draftMu sync.RWMutex
	drafts  map[uuid.UUID]*model.JournalEntry
}

// NewEngine creates an Engine over a registry and journal.
func NewEngine(reg *registry.Registry, j *ledger.Journal) *Engine {
	return &Engine{
		registry: reg,
		journal:  j,
		drafts:   make(map[uuid.UUID]*model.JournalEntry),
	}
}

// DraftParams holds parameters for creating or editing a draft entry.
type DraftParams struct {
	Date            time.Time
	Reference       string
	Memo            string
	TransactionType model.TransactionType
	Lines           []model.JournalLine
}

// CreateDraft records a new DRAFT entry. No balance validation happens
// here; a draft may be unbalanced or empty until it is posted.
func (en *Engine) CreateDraft(p DraftParams) (model.JournalEntry, error) {
	if p.Date.IsZero() {
		return model.JournalEntry{}, fmt.Errorf("entry date is required")
	}
	txn := p.TransactionType
	if txn == "" {
		txn = model.TxnGeneral
	}

	e := &model.JournalEntry{
		ID:              uuid.New(),
		Date:            p.Date,
		Reference:       p.Reference,
		Memo:            p.Memo,
		TransactionType: txn,
		Status:          model.StatusDraft,
		Lines:           append([]model.JournalLine(nil), p.Lines...),
	}
	en.draftMu.Lock()
	en.drafts[e.ID] = e
	en.draftMu.Unlock()
	return e.Clone(), nil
}

// UpdateDraft replaces the mutable fields of a DRAFT or PENDING entry.
// Posted and voided entries fail with ErrImmutable.
func (en *Engine) UpdateDraft(id uuid.UUID, p DraftParams) (model.JournalEntry, error) {
	en.draftMu.Lock()
	defer en.draftMu.Unlock()
	e, ok := en.drafts[id]
	if !ok {
		if _, err := en.journal.Get(id); err == nil {
			return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrImmutable, id)
		}
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !p.Date.IsZero() {
		e.Date = p.Date
	}
	e.Reference = p.Reference
	e.Memo = p.Memo
	if p.TransactionType != "" {
		e.TransactionType = p.TransactionType
	}
	e.Lines = append([]model.JournalLine(nil), p.Lines...)
	return e.Clone(), nil
}

// Submit moves a DRAFT entry to PENDING, parking it for review.
// Posting does not require this step; it exists for shops that want a
// review queue between data entry and the ledger.
func (en *Engine) Submit(id uuid.UUID) (model.JournalEntry, error) {
	en.draftMu.Lock()
	defer en.draftMu.Unlock()
	e, ok := en.drafts[id]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.Status != model.StatusDraft {
		return model.JournalEntry{}, fmt.Errorf("%w: %s is %s", ErrNotDraft, id, e.Status)
	}
	e.Status = model.StatusPending
	return e.Clone(), nil
}

// Discard deletes a DRAFT or PENDING entry. Posted entries are never
// deleted; the ledger is append-only.
func (en *Engine) Discard(id uuid.UUID) error {
	en.draftMu.Lock()
	defer en.draftMu.Unlock()
	if _, ok := en.drafts[id]; !ok {
		if _, err := en.journal.Get(id); err == nil {
			return fmt.Errorf("%w: %s", ErrImmutable, id)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(en.drafts, id)
	return nil
}

// Get returns a copy of the entry with the given ID, draft or posted.
func (en *Engine) Get(id uuid.UUID) (model.JournalEntry, error) {
	en.draftMu.RLock()
	e, ok := en.drafts[id]
	if ok {
		cp := e.Clone()
		en.draftMu.RUnlock()
		return cp, nil
	}
	en.draftMu.RUnlock()
	posted, err := en.journal.Get(id)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return posted, nil
}

// Drafts returns copies of all DRAFT and PENDING entries, ordered by
// date then reference.
func (en *Engine) Drafts() []model.JournalEntry {
	en.draftMu.RLock()
	out := make([]model.JournalEntry, 0, len(en.drafts))
	for _, e := range en.drafts {
		out = append(out, e.Clone())
	}
	en.draftMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Reference < out[j].Reference
	})
	return out
}

// Validate re-runs the posting rules against the entry's current state.
func (en *Engine) Validate(id uuid.UUID) (ValidationErrors, error) {
	e, err := en.Get(id)
	if err != nil {
		return nil, err
	}
	return Validate(e, en.registry), nil
}

// Post validates a DRAFT or PENDING entry and commits it: journal
// number assigned, entry appended, balances moved — all or nothing.
// On validation failure the returned error is a ValidationErrors list
// and nothing mutates.
func (en *Engine) Post(id uuid.UUID) (model.JournalEntry, error) {
	en.postMu.Lock()
	defer en.postMu.Unlock()

	en.draftMu.RLock()
	draft, ok := en.drafts[id]
	var e model.JournalEntry
	if ok {
		e = draft.Clone()
	}
	en.draftMu.RUnlock()
	if !ok {
		if prev, err := en.journal.Get(id); err == nil {
			if prev.Status == model.StatusPosted {
				return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrAlreadyPosted, id)
			}
			return model.JournalEntry{}, fmt.Errorf("%w: %s is %s", ErrImmutable, id, prev.Status)
		}
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if errs := Validate(e, en.registry); len(errs) > 0 {
		return model.JournalEntry{}, errs
	}

	e.Status = model.StatusPosted
	stored, err := en.commit(e)
	if err != nil {
		return model.JournalEntry{}, err
	}

	en.draftMu.Lock()
	delete(en.drafts, id)
	en.draftMu.Unlock()
	return stored, nil
}

// Void reverses a POSTED entry: a mirror-image reversal (debits and
// credits swapped) is posted under the original entry's date, so every
// touched balance returns exactly to its pre-posting value, and the
// original is marked VOID without otherwise changing.
func (en *Engine) Void(id uuid.UUID, reason string) (model.JournalEntry, error) {
	en.postMu.Lock()
	defer en.postMu.Unlock()

	orig, err := en.journal.Get(id)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if orig.Status != model.StatusPosted {
		return model.JournalEntry{}, fmt.Errorf("%w: %s is %s", ErrNotPosted, id, orig.Status)
	}

	reversal := model.JournalEntry{
		ID:              uuid.New(),
		Date:            orig.Date,
		Reference:       orig.Reference,
		Memo:            fmt.Sprintf("reversal of journal %d: %s", orig.JournalNumber, reason),
		TransactionType: orig.TransactionType,
		Status:          model.StatusPosted,
		Reverses:        orig.ID,
		Lines:           make([]model.JournalLine, len(orig.Lines)),
	}
	for i, l := range orig.Lines {
		reversal.Lines[i] = model.JournalLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Credit,
			Credit:      l.Debit,
		}
	}

	stored, err := en.commit(reversal)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if err := en.journal.MarkVoid(orig.ID, reason); err != nil {
		return model.JournalEntry{}, fmt.Errorf("%w: marking original void: %v", ErrStorage, err)
	}
	return stored, nil
}

// commit applies the entry's balance deltas and appends it. If the
// append fails the deltas are compensated, so callers never observe a
// balance change without its ledger entry. Caller holds postMu.
func (en *Engine) commit(e model.JournalEntry) (model.JournalEntry, error) {
	deltas, err := en.deltas(e)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if err := en.registry.ApplyDeltas(deltas); err != nil {
		return model.JournalEntry{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	stored, err := en.journal.Append(e)
	if err != nil {
		inverse := make(map[uuid.UUID]int64, len(deltas))
		for id, d := range deltas {
			inverse[id] = -d
		}
		// Restore balances; the accounts were present a moment ago.
		_ = en.registry.ApplyDeltas(inverse)
		return model.JournalEntry{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return stored, nil
}

// deltas resolves each line's account and folds the entry into one
// signed balance change per account, normal-balance rules applied.
func (en *Engine) deltas(e model.JournalEntry) (map[uuid.UUID]int64, error) {
	deltas := make(map[uuid.UUID]int64)
	for _, l := range e.Lines {
		a, err := en.registry.Resolve(l.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		deltas[l.AccountID] += a.BalanceDelta(l.Debit, l.Credit)
	}
	return deltas, nil
}

// Restore loads an already-posted entry into the journal and replays
// its balance effect, used when opening books from disk. Validation is
// structural only; the books file is the system of record.
func (en *Engine) Restore(e model.JournalEntry) error {
	en.postMu.Lock()
	defer en.postMu.Unlock()

	if e.Status != model.StatusPosted && e.Status != model.StatusVoid {
		return fmt.Errorf("cannot restore %s entry %s", e.Status, e.ID)
	}
	if !e.Balanced() {
		return fmt.Errorf("entry %s is unbalanced: debits %d, credits %d",
			e.ID, e.TotalDebit(), e.TotalCredit())
	}
	deltas, err := en.deltas(e)
	if err != nil {
		return err
	}
	if err := en.journal.Restore(e); err != nil {
		return err
	}
	return en.registry.ApplyDeltas(deltas)
}

// RestoreDraft loads a DRAFT or PENDING entry from disk.
func (en *Engine) RestoreDraft(e model.JournalEntry) error {
	if e.Status != model.StatusDraft && e.Status != model.StatusPending {
		return fmt.Errorf("cannot restore %s entry %s as draft", e.Status, e.ID)
	}
	cp := e.Clone()
	en.draftMu.Lock()
	defer en.draftMu.Unlock()
	if _, exists := en.drafts[e.ID]; exists {
		return fmt.Errorf("draft %s already loaded", e.ID)
	}
	en.drafts[e.ID] = &cp
	return nil
}
