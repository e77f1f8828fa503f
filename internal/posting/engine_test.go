package posting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbook-dev/tillbook/internal/ledger"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/registry"
)

type fixture struct {
	reg    *registry.Registry
	jrn    *ledger.Journal
	engine *Engine
	cash   model.Account // 1110, asset
	sales  model.Account // 4100, income
	rent   model.Account // 5100, expense
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := registry.New()
	jrn := ledger.New()

	add := func(code, name string, typ model.AccountType) model.Account {
		a, err := reg.Add(registry.AddParams{Code: code, Name: name, Type: typ})
		require.NoError(t, err)
		return a
	}
	return &fixture{
		reg:    reg,
		jrn:    jrn,
		engine: NewEngine(reg, jrn),
		cash:   add("1110", "Cash in Hand", model.AccountTypeAsset),
		sales:  add("4100", "Sales Revenue", model.AccountTypeIncome),
		rent:   add("5100", "Shop Rent", model.AccountTypeExpense),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	a, err := f.reg.Resolve(id)
	require.NoError(t, err)
	return a.Balance
}

func TestCreateDraftSkipsBalanceValidation(t *testing.T) {
	f := newFixture(t)

	// Unbalanced and empty drafts are both fine while DRAFT.
	e, err := f.engine.CreateDraft(DraftParams{
		Date:  date(2025, 6, 1),
		Lines: []model.JournalLine{{AccountID: f.cash.ID, Debit: 500}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, e.Status)
	assert.Zero(t, e.JournalNumber)

	_, err = f.engine.CreateDraft(DraftParams{Date: date(2025, 6, 1)})
	require.NoError(t, err)

	assert.Len(t, f.engine.Drafts(), 2)
}

func TestPostMovesBalances(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date:            date(2025, 6, 10),
		Reference:       "INV-001",
		TransactionType: model.TxnSales,
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Description: "till takings", Debit: 100000},
			{AccountID: f.sales.ID, Description: "day sales", Credit: 100000},
		},
	})
	require.NoError(t, err)

	posted, err := f.engine.Post(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPosted, posted.Status)
	assert.Equal(t, int64(1), posted.JournalNumber)

	// Debit-normal asset up, credit-normal income up.
	assert.Equal(t, int64(100000), f.balance(t, f.cash.ID))
	assert.Equal(t, int64(100000), f.balance(t, f.sales.ID))

	// The draft is gone; the entry now lives in the journal.
	assert.Empty(t, f.engine.Drafts())
	got, err := f.jrn.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, posted, got)
}

func TestPostUnbalancedMutatesNothing(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 50000},
			{AccountID: f.sales.ID, Credit: 30000},
		},
	})
	require.NoError(t, err)

	_, err = f.engine.Post(e.ID)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, RuleBalanced, verrs[0].Rule)

	assert.Zero(t, f.balance(t, f.cash.ID))
	assert.Zero(t, f.balance(t, f.sales.ID))
	assert.Zero(t, f.jrn.Len())
	assert.Equal(t, int64(1), f.jrn.NextNumber(), "no journal number consumed")

	// Still a draft, still fixable.
	got, err := f.engine.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, got.Status)
}

func TestValidateReturnsAllViolations(t *testing.T) {
	f := newFixture(t)
	unknown := uuid.New()
	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 100, Credit: 100}, // both sides
			{AccountID: unknown, Debit: 50},                 // unknown account
		},
	})
	require.NoError(t, err)

	verrs, err := f.engine.Validate(e.ID)
	require.NoError(t, err)

	rules := make(map[int]bool)
	for _, v := range verrs {
		rules[v.Rule] = true
	}
	assert.True(t, rules[RuleOneSide])
	assert.True(t, rules[RuleAccount])
	assert.True(t, rules[RuleBalanced])
}

func TestValidateEmptyAndNegative(t *testing.T) {
	f := newFixture(t)

	verrs := Validate(model.JournalEntry{}, f.reg)
	require.Len(t, verrs, 1)
	assert.Equal(t, RuleHasLines, verrs[0].Rule)

	verrs = Validate(model.JournalEntry{Lines: []model.JournalLine{
		{AccountID: f.cash.ID, Debit: -100},
		{AccountID: f.sales.ID, Credit: -100},
	}}, f.reg)
	rules := make(map[int]bool)
	for _, v := range verrs {
		rules[v.Rule] = true
	}
	assert.True(t, rules[RuleNonNegative])
}

func TestPostRejectsInactiveAndNonLeafAccounts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Deactivate(f.rent.ID))
	_, err := f.reg.Add(registry.AddParams{
		Code: "1111", Name: "Till 1", Type: model.AccountTypeAsset, ParentID: f.cash.ID,
	})
	require.NoError(t, err)

	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.rent.ID, Debit: 1000}, // inactive
			{AccountID: f.cash.ID, Credit: 1000}, // now a parent
		},
	})
	require.NoError(t, err)

	_, err = f.engine.Post(e.ID)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	for _, v := range verrs {
		assert.Equal(t, RuleAccount, v.Rule)
	}
}

func TestPostTwiceFailsWithoutDoubleCounting(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 1000},
			{AccountID: f.sales.ID, Credit: 1000},
		},
	})
	require.NoError(t, err)

	_, err = f.engine.Post(e.ID)
	require.NoError(t, err)

	_, err = f.engine.Post(e.ID)
	require.ErrorIs(t, err, ErrAlreadyPosted)
	assert.Equal(t, int64(1000), f.balance(t, f.cash.ID))
	assert.Equal(t, 1, f.jrn.Len())
}

func TestVoidRestoresBalances(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date:            date(2025, 6, 10),
		TransactionType: model.TxnSales,
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 100000},
			{AccountID: f.sales.ID, Credit: 100000},
		},
	})
	require.NoError(t, err)
	posted, err := f.engine.Post(e.ID)
	require.NoError(t, err)

	reversal, err := f.engine.Void(posted.ID, "voided test sale")
	require.NoError(t, err)

	// Reversal swaps sides, same date, links back to the original.
	assert.Equal(t, model.StatusPosted, reversal.Status)
	assert.Equal(t, posted.Date, reversal.Date)
	assert.Equal(t, posted.ID, reversal.Reverses)
	assert.Equal(t, int64(100000), reversal.Lines[0].Credit)
	assert.Equal(t, int64(0), reversal.Lines[0].Debit)
	assert.Equal(t, int64(100000), reversal.Lines[1].Debit)

	// Net effect on every touched account is zero.
	assert.Zero(t, f.balance(t, f.cash.ID))
	assert.Zero(t, f.balance(t, f.sales.ID))

	// Original is VOID and otherwise identical to before voiding.
	orig, err := f.jrn.Get(posted.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVoid, orig.Status)
	assert.Equal(t, "voided test sale", orig.VoidReason)
	orig.Status = posted.Status
	orig.VoidReason = ""
	assert.Equal(t, posted, orig)
}

func TestVoidRequiresPostedStatus(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 1000},
			{AccountID: f.sales.ID, Credit: 1000},
		},
	})
	require.NoError(t, err)

	// Drafts cannot be voided.
	_, err = f.engine.Void(e.ID, "x")
	require.ErrorIs(t, err, ErrNotFound)

	posted, err := f.engine.Post(e.ID)
	require.NoError(t, err)
	_, err = f.engine.Void(posted.ID, "first")
	require.NoError(t, err)

	// A VOID entry is terminal.
	_, err = f.engine.Void(posted.ID, "second")
	require.ErrorIs(t, err, ErrNotPosted)
	assert.Zero(t, f.balance(t, f.cash.ID))
}

func TestSubmitThenPost(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.rent.ID, Debit: 45000},
			{AccountID: f.cash.ID, Credit: 45000},
		},
	})
	require.NoError(t, err)

	pending, err := f.engine.Submit(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, pending.Status)

	// Submitting twice fails; the entry is no longer DRAFT.
	_, err = f.engine.Submit(e.ID)
	require.ErrorIs(t, err, ErrNotDraft)

	posted, err := f.engine.Post(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPosted, posted.Status)
	assert.Equal(t, int64(45000), f.balance(t, f.rent.ID))
	assert.Equal(t, int64(-45000), f.balance(t, f.cash.ID))
}

func TestUpdateDraftAndImmutability(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{
		Date:  date(2025, 6, 10),
		Memo:  "first pass",
		Lines: []model.JournalLine{{AccountID: f.cash.ID, Debit: 100}},
	})
	require.NoError(t, err)

	updated, err := f.engine.UpdateDraft(e.ID, DraftParams{
		Date: date(2025, 6, 11),
		Memo: "second pass",
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 100},
			{AccountID: f.sales.ID, Credit: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "second pass", updated.Memo)
	require.Len(t, updated.Lines, 2)

	posted, err := f.engine.Post(e.ID)
	require.NoError(t, err)

	_, err = f.engine.UpdateDraft(posted.ID, DraftParams{Memo: "too late"})
	require.ErrorIs(t, err, ErrImmutable)

	_, err = f.engine.Void(posted.ID, "undo")
	require.NoError(t, err)
	_, err = f.engine.UpdateDraft(posted.ID, DraftParams{Memo: "still too late"})
	require.ErrorIs(t, err, ErrImmutable)

	_, err = f.engine.UpdateDraft(uuid.New(), DraftParams{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	e, err := f.engine.CreateDraft(DraftParams{Date: date(2025, 6, 10)})
	require.NoError(t, err)

	require.NoError(t, f.engine.Discard(e.ID))
	_, err = f.engine.Get(e.ID)
	require.ErrorIs(t, err, ErrNotFound)

	posted, err := f.engine.CreateDraft(DraftParams{
		Date: date(2025, 6, 10),
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 100},
			{AccountID: f.sales.ID, Credit: 100},
		},
	})
	require.NoError(t, err)
	_, err = f.engine.Post(posted.ID)
	require.NoError(t, err)
	require.ErrorIs(t, f.engine.Discard(posted.ID), ErrImmutable)
}

func TestRestoreReplaysBalances(t *testing.T) {
	f := newFixture(t)
	e := model.JournalEntry{
		ID:              uuid.New(),
		JournalNumber:   3,
		Date:            date(2025, 5, 1),
		TransactionType: model.TxnSales,
		Status:          model.StatusPosted,
		Lines: []model.JournalLine{
			{AccountID: f.cash.ID, Debit: 2500},
			{AccountID: f.sales.ID, Credit: 2500},
		},
	}
	require.NoError(t, f.engine.Restore(e))
	assert.Equal(t, int64(2500), f.balance(t, f.cash.ID))
	assert.Equal(t, int64(4), f.jrn.NextNumber())

	// Unbalanced rows in the books fail the load.
	bad := e
	bad.ID = uuid.New()
	bad.JournalNumber = 4
	bad.Lines = []model.JournalLine{{AccountID: f.cash.ID, Debit: 100}}
	require.Error(t, f.engine.Restore(bad))
}

func TestConcurrentPostingKeepsInvariants(t *testing.T) {
	f := newFixture(t)

	const n = 50
	ids := make([]uuid.UUID, n)
	for i := range ids {
		e, err := f.engine.CreateDraft(DraftParams{
			Date: date(2025, 6, 1+i%28),
			Lines: []model.JournalLine{
				{AccountID: f.cash.ID, Debit: 100},
				{AccountID: f.sales.ID, Credit: 100},
			},
		})
		require.NoError(t, err)
		ids[i] = e.ID
	}

	done := make(chan error, n)
	for _, id := range ids {
		go func(id uuid.UUID) {
			_, err := f.engine.Post(id)
			done <- err
		}(id)
	}
	for range ids {
		require.NoError(t, <-done)
	}

	// Gap-free unique numbers 1..n, balances match the posted sum.
	seen := make(map[int64]bool)
	for e := range f.jrn.Range(time.Time{}, time.Time{}, ledger.Filter{}) {
		assert.False(t, seen[e.JournalNumber])
		seen[e.JournalNumber] = true
	}
	assert.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing journal number %d", i)
	}
	assert.Equal(t, int64(n*100), f.balance(t, f.cash.ID))
	assert.Equal(t, int64(n*100), f.balance(t, f.sales.ID))
}
