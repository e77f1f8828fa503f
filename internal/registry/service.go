// Package registry owns the chart of accounts: a forest of typed
// accounts indexed by ID and code. All structural invariants (unique
// codes, parent/child type agreement, acyclic parent links, leaf-only
// posting) are enforced here, at insertion time, rather than trusted
// from callers. A single mutex serializes mutation so no reader ever
// observes a half-applied balance update.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// Registry provides in-memory lookup and mutation over the chart of
// accounts.
type Registry struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*model.Account
	byCode map[string]uuid.UUID
	posted map[uuid.UUID]bool // accounts that ever carried a posted line
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byID:   make(map[uuid.UUID]*model.Account),
		byCode: make(map[string]uuid.UUID),
		posted: make(map[uuid.UUID]bool),
	}
}

// AddParams holds parameters for creating an account.
type AddParams struct {
	Code        string
	Name        string
	Type        model.AccountType
	ParentID    uuid.UUID // uuid.Nil = top-level
	Description string
}

// Add creates a new leaf account with zero balance and returns a copy
// of it. The parent link is validated here and never changes afterward,
// so the parent graph stays a forest: a cycle would need an edge to an
// account that does not exist yet.
func (r *Registry) Add(p AddParams) (model.Account, error) {
	if p.Code == "" {
		return model.Account{}, fmt.Errorf("account code is required")
	}
	if !p.Type.Valid() {
		return model.Account{}, fmt.Errorf("%w: %q", ErrInvalidType, p.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[p.Code]; exists {
		return model.Account{}, fmt.Errorf("%w: %q", ErrDuplicateCode, p.Code)
	}

	if p.ParentID != uuid.Nil {
		parent, ok := r.byID[p.ParentID]
		if !ok {
			return model.Account{}, fmt.Errorf("%w: %s", ErrParentNotFound, p.ParentID)
		}
		if parent.Type != p.Type {
			return model.Account{}, fmt.Errorf("%w: child %q is %s, parent %q is %s",
				ErrTypeMismatch, p.Code, p.Type, parent.Code, parent.Type)
		}
		// A posted-against leaf can never become a parent; otherwise its
		// direct balance lines would sit on a non-leaf node.
		if r.posted[p.ParentID] {
			return model.Account{}, fmt.Errorf("%w: parent %q already has posted lines",
				ErrHasHistory, parent.Code)
		}
	}

	a := &model.Account{
		ID:          uuid.New(),
		Code:        p.Code,
		Name:        p.Name,
		Type:        p.Type,
		ParentID:    p.ParentID,
		Active:      true,
		Description: p.Description,
	}
	r.byID[a.ID] = a
	r.byCode[a.Code] = a.ID
	return *a, nil
}

// Restore inserts an account loaded from disk, keeping its ID and
// flags. Parent links are verified by the loader after every account
// is in, since a chart file carries no ordering guarantee.
func (r *Registry) Restore(a model.Account) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, a.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCode[a.Code]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCode, a.Code)
	}
	if _, exists := r.byID[a.ID]; exists {
		return fmt.Errorf("account id %s already exists", a.ID)
	}
	cp := a
	r.byID[a.ID] = &cp
	r.byCode[a.Code] = a.ID
	return nil
}

// VerifyLinks checks every parent reference and type agreement after a
// bulk Restore. The same rules Add enforces incrementally.
func (r *Registry) VerifyLinks() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if a.ParentID == uuid.Nil {
			continue
		}
		parent, ok := r.byID[a.ParentID]
		if !ok {
			return fmt.Errorf("%w: account %q references %s", ErrParentNotFound, a.Code, a.ParentID)
		}
		if parent.Type != a.Type {
			return fmt.Errorf("%w: child %q is %s, parent %q is %s",
				ErrTypeMismatch, a.Code, a.Type, parent.Code, parent.Type)
		}
	}
	// A loaded chart could carry a parent cycle that Add can never
	// produce; walk each parent chain to make sure it terminates.
	for _, a := range r.byID {
		steps := 0
		for cur := a; cur.ParentID != uuid.Nil; cur = r.byID[cur.ParentID] {
			steps++
			if steps > len(r.byID) {
				return fmt.Errorf("parent cycle involving account %q", a.Code)
			}
		}
	}
	return nil
}

// Resolve returns a copy of the account with the given ID.
func (r *Registry) Resolve(id uuid.UUID) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *a, nil
}

// ResolveByCode returns a copy of the account with the given code.
func (r *Registry) ResolveByCode(code string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: code %q", ErrNotFound, code)
	}
	return *r.byID[id], nil
}

// Deactivate marks an account inactive. Historical balances are not
// affected; the account simply stops accepting new postings.
func (r *Registry) Deactivate(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.Active = false
	return nil
}

// Remove deletes an account that has no children and no posted history.
// Anything else stays forever for audit trail integrity.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for _, other := range r.byID {
		if other.ParentID == id {
			return fmt.Errorf("%w: %q is parent of %q", ErrHasChildren, a.Code, other.Code)
		}
	}
	if r.posted[id] {
		return fmt.Errorf("%w: %q", ErrHasHistory, a.Code)
	}
	delete(r.byCode, a.Code)
	delete(r.byID, id)
	return nil
}

// All returns copies of every account, ordered by code.
func (r *Registry) All() []model.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ByType returns copies of all accounts of the given type, ordered by code.
func (r *Registry) ByType(t model.AccountType) []model.Account {
	var out []model.Account
	for _, a := range r.All() {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Postable reports whether the account may appear on a posted line:
// it must exist, be active, and be a leaf.
func (r *Registry) Postable(id uuid.UUID) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !a.Active {
		return model.Account{}, fmt.Errorf("account %q is inactive", a.Code)
	}
	for _, other := range r.byID {
		if other.ParentID == id {
			return model.Account{}, fmt.Errorf("%w: %q is not a leaf account", ErrHasChildren, a.Code)
		}
	}
	return *a, nil
}

// ApplyDeltas adjusts account balances in one critical section and
// marks the touched accounts as carrying posted history. Unknown IDs
// fail the whole call with no balance changed; the posting engine
// resolves accounts before building deltas, so a miss here is a bug.
func (r *Registry) ApplyDeltas(deltas map[uuid.UUID]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range deltas {
		if _, ok := r.byID[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	for id, d := range deltas {
		r.byID[id].Balance += d
		r.posted[id] = true
	}
	return nil
}

// HasHistory reports whether the account ever carried a posted line.
func (r *Registry) HasHistory(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.posted[id]
}
