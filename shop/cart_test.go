package shop

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatsby() Book {
	return Book{ID: "BK001", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald",
		Category: "Fiction", Price: decimal.NewFromInt(1500), Stock: 25}
}

func TestAddItemRejectsOverStock(t *testing.T) {
	cart := NewCart()

	err := cart.AddItem(gatsby(), 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 30, stockErr.Requested)
	assert.Equal(t, 25, stockErr.Available)

	assert.Zero(t, cart.Len(), "rejected add must leave the cart empty")
}

func TestAddItemMergesQuantities(t *testing.T) {
	cart := NewCart()

	require.NoError(t, cart.AddItem(gatsby(), 5))
	require.NoError(t, cart.AddItem(gatsby(), 3))

	items := cart.Items()
	require.Len(t, items, 1, "same book merges into one line")
	assert.Equal(t, 8, items[0].Quantity)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(12000)))
}

func TestMergeRejectLeavesCartUnchanged(t *testing.T) {
	book := gatsby()
	book.Stock = 10
	cart := NewCart()

	require.NoError(t, cart.AddItem(book, 6))
	err := cart.AddItem(book, 6) // merged 12 > stock 10
	assert.ErrorIs(t, err, ErrInsufficientStock)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity, "failed merge must not change the existing line")
}

func TestAddItemQuantityValidation(t *testing.T) {
	cart := NewCart()
	assert.ErrorIs(t, cart.AddItem(gatsby(), 0), ErrValidation)
	assert.ErrorIs(t, cart.AddItem(gatsby(), -2), ErrValidation)
	assert.Zero(t, cart.Len())
}

func TestCartSnapshotsPriceAndTitle(t *testing.T) {
	book := gatsby()
	cart := NewCart()
	require.NoError(t, cart.AddItem(book, 2))

	// A later catalog change must not reach the uncommitted line.
	book.Price = decimal.NewFromInt(9999)
	book.Title = "Repriced"

	items := cart.Items()
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "The Great Gatsby", items[0].Title)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(3000)))
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(gatsby(), 2)) // 3000
	other := Book{ID: "BK006", Title: "1984", Author: "George Orwell",
		Category: "Fiction", Price: decimal.NewFromInt(1100), Stock: 35}
	require.NoError(t, cart.AddItem(other, 1)) // 1100

	require.True(t, cart.Total().Equal(decimal.NewFromInt(4100)))

	require.NoError(t, cart.RemoveItem(0))
	assert.Equal(t, 1, cart.Len())
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(1100)))

	assert.ErrorIs(t, cart.RemoveItem(5), ErrNotFound)
	assert.ErrorIs(t, cart.RemoveItem(-1), ErrNotFound)
}

func TestClear(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(gatsby(), 1))
	cart.Clear()
	assert.Zero(t, cart.Len())
	assert.True(t, cart.Total().IsZero())
}
