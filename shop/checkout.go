package shop

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LineFailure records one cart line that could not be committed and why.
type LineFailure struct {
	Item CartItem
	Err  error
}

// CheckoutResult reports the outcome of one checkout. Every committed line
// shares the same BatchID. Total covers committed lines only.
type CheckoutResult struct {
	BatchID   string
	Committed []Transaction
	Failed    []LineFailure
	Total     decimal.Decimal
}

// Checkout converts the cart into stock decrements and ledger entries.
//
// Each line is re-validated against the book's *current* stock, so a cart
// that went stale between add-to-cart and checkout cannot drive stock
// negative. Checkout is best-effort per line: a failed line is reported in
// the result while the remaining lines still commit.
//
// Each committed line is appended to the ledger file immediately; the
// mutated catalog is saved once after all lines. There is no rollback
// across the two files: if the catalog save fails, the appended ledger
// lines stay durable and memory/disk diverge until the next successful
// save. That gap is returned as the error alongside the partial result.
//
// On success the cart is cleared. If no line commits, the cart is left
// unchanged and the joined per-line errors are returned.
func (s *Store) Checkout(cart *Cart, cashier string) (*CheckoutResult, error) {
	if cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	result := &CheckoutResult{
		BatchID: "TXN" + strconv.FormatInt(now.UnixMilli(), 10),
		Total:   decimal.Zero,
	}

	for _, item := range cart.Items() {
		idx := -1
		for i := range s.books {
			if s.books[i].ID == item.BookID {
				idx = i
				break
			}
		}
		if idx < 0 {
			result.Failed = append(result.Failed, LineFailure{Item: item, Err: ErrNotFound})
			continue
		}
		if item.Quantity > s.books[idx].Stock {
			result.Failed = append(result.Failed, LineFailure{Item: item, Err: &InsufficientStockError{
				BookID:    item.BookID,
				Requested: item.Quantity,
				Available: s.books[idx].Stock,
			}})
			continue
		}

		s.books[idx].Stock -= item.Quantity

		tx := Transaction{
			ID:        result.BatchID,
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.LineTotal(),
			Cashier:   cashier,
			Timestamp: now.Format(TimeFormat),
		}
		if err := s.files.AppendTransaction(tx); err != nil {
			// Keep ledger and catalog consistent for this line: undo the
			// decrement and report the line as failed.
			s.books[idx].Stock += item.Quantity
			log.Error().Err(err).Str("book", item.BookID).Msg("ledger append failed, line not committed")
			result.Failed = append(result.Failed, LineFailure{Item: item, Err: err})
			continue
		}

		s.transactions = append(s.transactions, tx)
		result.Committed = append(result.Committed, tx)
		result.Total = result.Total.Add(tx.Total)
	}

	if len(result.Committed) == 0 {
		errs := make([]error, 0, len(result.Failed))
		for _, f := range result.Failed {
			errs = append(errs, f.Err)
		}
		return result, errors.Join(errs...)
	}

	if err := s.saveBooksLocked(); err != nil {
		// Ledger lines are already durable; stock on disk is now behind.
		cart.Clear()
		return result, err
	}

	cart.Clear()
	return result, nil
}
