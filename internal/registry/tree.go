package registry

import (
	"iter"
	"sort"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

// TreeNode is one account in a depth-first traversal of the chart,
// with its nesting depth (0 = top-level).
type TreeNode struct {
	Account model.Account
	Depth   int
}

// Tree returns a lazy, restartable depth-first traversal of the chart
// of accounts, siblings ordered by code. Each range over the sequence
// works on its own snapshot taken when iteration starts, so a
// traversal never observes a concurrent mutation mid-walk.
func (r *Registry) Tree() iter.Seq[TreeNode] {
	return func(yield func(TreeNode) bool) {
		r.mu.RLock()
		accounts := make([]model.Account, 0, len(r.byID))
		for _, a := range r.byID {
			accounts = append(accounts, *a)
		}
		r.mu.RUnlock()

		children := make(map[uuid.UUID][]model.Account)
		for _, a := range accounts {
			children[a.ParentID] = append(children[a.ParentID], a)
		}
		for _, siblings := range children {
			sort.Slice(siblings, func(i, j int) bool {
				return siblings[i].Code < siblings[j].Code
			})
		}

		var walk func(parent uuid.UUID, depth int) bool
		walk = func(parent uuid.UUID, depth int) bool {
			for _, a := range children[parent] {
				if !yield(TreeNode{Account: a, Depth: depth}) {
					return false
				}
				if !walk(a.ID, depth+1) {
					return false
				}
			}
			return true
		}
		walk(uuid.Nil, 0)
	}
}
