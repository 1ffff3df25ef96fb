// Package ledger is the single choke point through which stock ever changes.
// Everything funnels into Store.AdjustStock, which enforces the non-negative
// stock invariant; the ledger adds the multi-line reserve/release semantics
// checkout and cancellation need.
package ledger

import (
	"context"
	"fmt"

	"github.com/libreriarexy/libreriarexy/internal/repository"
)

// InsufficientStockError names the product that could not be deducted so the
// message can be shown to the user as-is.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// Line is one stock movement. A negative quantity reverses a sale (credit
// note), which always succeeds because it only ever adds stock back.
type Line struct {
	ProductID   string
	ProductName string
	Quantity    int
}

type Ledger struct {
	store repository.Store
}

func New(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// Deduct removes qty units of a product. The deduction fails closed: when
// stock is insufficient nothing is mutated and the caller must abort.
func (l *Ledger) Deduct(ctx context.Context, line Line) error {
	ok, err := l.store.AdjustStock(ctx, line.ProductID, -line.Quantity)
	if err != nil {
		return fmt.Errorf("adjust stock for %s: %w", line.ProductID, err)
	}
	if !ok {
		return &InsufficientStockError{ProductName: line.ProductName}
	}
	return nil
}

// Restore puts qty units back, e.g. when an order is cancelled.
func (l *Ledger) Restore(ctx context.Context, line Line) error {
	_, err := l.store.AdjustStock(ctx, line.ProductID, line.Quantity)
	if err != nil {
		return fmt.Errorf("restore stock for %s: %w", line.ProductID, err)
	}
	return nil
}

// ReserveAll deducts every line or none of them. Lines are processed strictly
// in order so a duplicate product across lines observes earlier deductions;
// on the first failure the lines already deducted are released again before
// the error is returned.
func (l *Ledger) ReserveAll(ctx context.Context, lines []Line) error {
	for i, line := range lines {
		if err := l.Deduct(ctx, line); err != nil {
			l.ReleaseAll(ctx, lines[:i])
			return err
		}
	}
	return nil
}

// ReleaseAll restores every line. Restores are best effort: a line that can
// no longer be restored is skipped rather than blocking the rest.
func (l *Ledger) ReleaseAll(ctx context.Context, lines []Line) {
	for _, line := range lines {
		_ = l.Restore(ctx, line)
	}
}
