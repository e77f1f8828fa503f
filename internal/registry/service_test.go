package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbook-dev/tillbook/internal/model"
)

func TestAddAndResolve(t *testing.T) {
	r := New()

	a, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.True(t, a.Active)
	assert.Zero(t, a.Balance)

	got, err := r.Resolve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, err = r.ResolveByCode("1110")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestAddDuplicateCode(t *testing.T) {
	r := New()
	_, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, err = r.Add(AddParams{Code: "1110", Name: "Petty Cash", Type: model.AccountTypeAsset})
	require.ErrorIs(t, err, ErrDuplicateCode)

	// The registry never holds two accounts with the same code.
	assert.Len(t, r.All(), 1)
}

func TestAddInvalidType(t *testing.T) {
	r := New()
	_, err := r.Add(AddParams{Code: "9999", Name: "Mystery", Type: "mystery"})
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestAddParentNotFound(t *testing.T) {
	r := New()
	_, err := r.Add(AddParams{Code: "1111", Name: "Till Float", Type: model.AccountTypeAsset, ParentID: uuid.New()})
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestAddTypeMismatch(t *testing.T) {
	r := New()
	parent, err := r.Add(AddParams{Code: "1100", Name: "Current Assets", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, err = r.Add(AddParams{Code: "5100", Name: "Rent", Type: model.AccountTypeExpense, ParentID: parent.ID})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAddChildUnderPostedLeaf(t *testing.T) {
	r := New()
	leaf, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	require.NoError(t, r.ApplyDeltas(map[uuid.UUID]int64{leaf.ID: 1000}))

	_, err = r.Add(AddParams{Code: "1111", Name: "Till 1", Type: model.AccountTypeAsset, ParentID: leaf.ID})
	require.ErrorIs(t, err, ErrHasHistory)
}

func TestDeactivate(t *testing.T) {
	r := New()
	a, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	require.NoError(t, r.Deactivate(a.ID))
	got, err := r.Resolve(a.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.ErrorIs(t, r.Deactivate(uuid.New()), ErrNotFound)
}

func TestRemove(t *testing.T) {
	r := New()
	parent, err := r.Add(AddParams{Code: "1100", Name: "Current Assets", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	child, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset, ParentID: parent.ID})
	require.NoError(t, err)

	require.ErrorIs(t, r.Remove(parent.ID), ErrHasChildren)

	require.NoError(t, r.ApplyDeltas(map[uuid.UUID]int64{child.ID: 500}))
	require.ErrorIs(t, r.Remove(child.ID), ErrHasHistory)

	clean, err := r.Add(AddParams{Code: "1120", Name: "Petty Cash", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	require.NoError(t, r.Remove(clean.ID))
	_, err = r.Resolve(clean.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Code is free again after removal.
	_, err = r.Add(AddParams{Code: "1120", Name: "Petty Cash", Type: model.AccountTypeAsset})
	require.NoError(t, err)
}

func TestPostable(t *testing.T) {
	r := New()
	parent, err := r.Add(AddParams{Code: "1100", Name: "Current Assets", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	child, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset, ParentID: parent.ID})
	require.NoError(t, err)

	_, err = r.Postable(child.ID)
	require.NoError(t, err)

	// Non-leaf accounts are not postable.
	_, err = r.Postable(parent.ID)
	require.ErrorIs(t, err, ErrHasChildren)

	// Inactive accounts are not postable.
	require.NoError(t, r.Deactivate(child.ID))
	_, err = r.Postable(child.ID)
	require.Error(t, err)
}

func TestApplyDeltasAtomic(t *testing.T) {
	r := New()
	a, err := r.Add(AddParams{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	// One unknown ID fails the whole batch with no balance changed.
	err = r.ApplyDeltas(map[uuid.UUID]int64{a.ID: 1000, uuid.New(): -1000})
	require.ErrorIs(t, err, ErrNotFound)
	got, err := r.Resolve(a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance)
	assert.False(t, r.HasHistory(a.ID))

	require.NoError(t, r.ApplyDeltas(map[uuid.UUID]int64{a.ID: 1000}))
	got, _ = r.Resolve(a.ID)
	assert.Equal(t, int64(1000), got.Balance)
	assert.True(t, r.HasHistory(a.ID))
}

func TestTreeTraversal(t *testing.T) {
	r := New()
	assets, err := r.Add(AddParams{Code: "1000", Name: "Assets", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	_, err = r.Add(AddParams{Code: "1200", Name: "Inventory", Type: model.AccountTypeAsset, ParentID: assets.ID})
	require.NoError(t, err)
	_, err = r.Add(AddParams{Code: "1100", Name: "Cash", Type: model.AccountTypeAsset, ParentID: assets.ID})
	require.NoError(t, err)
	_, err = r.Add(AddParams{Code: "4000", Name: "Sales", Type: model.AccountTypeIncome})
	require.NoError(t, err)

	var codes []string
	var depths []int
	for n := range r.Tree() {
		codes = append(codes, n.Account.Code)
		depths = append(depths, n.Depth)
	}
	assert.Equal(t, []string{"1000", "1100", "1200", "4000"}, codes)
	assert.Equal(t, []int{0, 1, 1, 0}, depths)

	// Restartable: a second range yields the same walk.
	var again []string
	for n := range r.Tree() {
		again = append(again, n.Account.Code)
	}
	assert.Equal(t, codes, again)
}

func TestTreeEarlyStop(t *testing.T) {
	r := New()
	for _, code := range []string{"1000", "2000", "3000"} {
		_, err := r.Add(AddParams{Code: code, Name: code, Type: model.AccountTypeAsset})
		require.NoError(t, err)
	}
	var seen int
	for range r.Tree() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
