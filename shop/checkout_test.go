package shop

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutStore(t *testing.T) (*Store, *Config) {
	t.Helper()
	store, cfg := newTestStore(t)
	fixed := time.Date(2026, 8, 28, 14, 30, 0, 0, time.Local)
	store.now = func() time.Time { return fixed }
	return store, cfg
}

func TestCheckoutEmptyCart(t *testing.T) {
	store, _ := newCheckoutStore(t)
	_, err := store.Checkout(NewCart(), "cashier")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutSingleLine(t *testing.T) {
	store, cfg := newCheckoutStore(t)

	book, ok := store.BookByID("BK001")
	require.True(t, ok)
	cart := NewCart()
	require.NoError(t, cart.AddItem(book, 5))
	require.NoError(t, cart.AddItem(book, 3)) // merges to 8

	result, err := store.Checkout(cart, "cashier")
	require.NoError(t, err)
	require.Len(t, result.Committed, 1)
	assert.Empty(t, result.Failed)

	tx := result.Committed[0]
	assert.Equal(t, "BK001", tx.BookID)
	assert.Equal(t, 8, tx.Quantity)
	assert.True(t, tx.Total.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, "cashier", tx.Cashier)
	assert.Equal(t, "2026-08-28 14:30:00", tx.Timestamp)
	assert.Equal(t, result.BatchID, tx.ID)
	expectedBatch := fmt.Sprintf("TXN%d", time.Date(2026, 8, 28, 14, 30, 0, 0, time.Local).UnixMilli())
	assert.Equal(t, expectedBatch, result.BatchID)

	// Stock decremented, cart cleared, ledger and memory agree.
	after, _ := store.BookByID("BK001")
	assert.Equal(t, 17, after.Stock)
	assert.Zero(t, cart.Len())
	assert.Len(t, store.Transactions(), 1)

	// Everything survives a reload from the flat files.
	fs, err := NewFileStore(cfg)
	require.NoError(t, err)
	reloaded, err := NewStore(fs)
	require.NoError(t, err)
	b, _ := reloaded.BookByID("BK001")
	assert.Equal(t, 17, b.Stock)
	txs := reloaded.Transactions()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Total.Equal(decimal.NewFromInt(12000)))
}

func TestCheckoutAppendsOneTransactionPerLine(t *testing.T) {
	store, _ := newCheckoutStore(t)

	ids := []string{"BK001", "BK003", "BK006"}
	quantities := []int{2, 1, 4}
	cart := NewCart()
	before := map[string]int{}
	for i, id := range ids {
		b, ok := store.BookByID(id)
		require.True(t, ok)
		before[id] = b.Stock
		require.NoError(t, cart.AddItem(b, quantities[i]))
	}

	result, err := store.Checkout(cart, "manager")
	require.NoError(t, err)
	require.Len(t, result.Committed, len(ids))
	assert.Len(t, store.Transactions(), len(ids))

	for i, id := range ids {
		// Lines commit in cart order and share one batch id.
		assert.Equal(t, id, result.Committed[i].BookID)
		assert.Equal(t, result.BatchID, result.Committed[i].ID)

		b, _ := store.BookByID(id)
		assert.Equal(t, before[id]-quantities[i], b.Stock, "stock of %s", id)
	}

	wantTotal := decimal.NewFromInt(2*1500 + 1*2000 + 4*1100)
	assert.True(t, result.Total.Equal(wantTotal), "got total %s", result.Total)
}

func TestCheckoutRevalidatesStaleLines(t *testing.T) {
	store, _ := newCheckoutStore(t)

	gatsby, _ := store.BookByID("BK001")
	orwell, _ := store.BookByID("BK006")
	cart := NewCart()
	require.NoError(t, cart.AddItem(gatsby, 10))
	require.NoError(t, cart.AddItem(orwell, 2))

	// The catalog changes between add-to-cart and checkout: BK001 drops to 4.
	stale := gatsby
	stale.Stock = 4
	require.NoError(t, store.UpdateBook(0, stale))

	result, err := store.Checkout(cart, "cashier")
	require.NoError(t, err, "partial failure is reported in the result, not as an error")

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "BK001", result.Failed[0].Item.BookID)
	assert.ErrorIs(t, result.Failed[0].Err, ErrInsufficientStock)

	require.Len(t, result.Committed, 1)
	assert.Equal(t, "BK006", result.Committed[0].BookID)

	// The stale line must not drive stock negative.
	b, _ := store.BookByID("BK001")
	assert.Equal(t, 4, b.Stock)
	b, _ = store.BookByID("BK006")
	assert.Equal(t, 33, b.Stock)

	// Only the committed line reached the ledger; the cart is done either way.
	assert.Len(t, store.Transactions(), 1)
	assert.Zero(t, cart.Len())
}

func TestCheckoutNothingCommittedLeavesCart(t *testing.T) {
	store, _ := newCheckoutStore(t)

	gatsby, _ := store.BookByID("BK001")
	cart := NewCart()
	require.NoError(t, cart.AddItem(gatsby, 1))

	// The book disappears before checkout.
	require.NoError(t, store.DeleteBook(0))

	result, err := store.Checkout(cart, "cashier")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, result)
	assert.Empty(t, result.Committed)
	require.Len(t, result.Failed, 1)

	// Rejected checkout: cart unchanged, no ledger entries.
	assert.Equal(t, 1, cart.Len())
	assert.Empty(t, store.Transactions())
}

func TestCheckoutTotalMatchesCartTotal(t *testing.T) {
	store, _ := newCheckoutStore(t)

	cart := NewCart()
	b1, _ := store.BookByID("BK005")
	b2, _ := store.BookByID("BK010")
	require.NoError(t, cart.AddItem(b1, 3))
	require.NoError(t, cart.AddItem(b2, 2))
	cartTotal := cart.Total()

	result, err := store.Checkout(cart, "cashier")
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(cartTotal))
}
