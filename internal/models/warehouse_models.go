package models

import (
	"errors"
	"fmt"
	"time"
)

// Stock operation kinds accepted by Warehouse.ApplyDelta.
const (
	StockOpAdd      = "add"
	StockOpSubtract = "subtract"
	StockOpSet      = "set"
)

var (
	// ErrInsufficientStock is returned when a subtract would exceed the available
	// (quantity - reserved) amount of a ledger entry.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNegativeQuantity is returned when an operation would leave a ledger
	// entry with a negative quantity or was given a negative amount.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrReservedExceedsQuantity is returned when an operation would leave a
	// ledger entry with reserved > quantity.
	ErrReservedExceedsQuantity = errors.New("reserved stock cannot exceed quantity")

	// ErrUnknownStockOperation is returned for an operation outside add/subtract/set.
	ErrUnknownStockOperation = errors.New("unknown stock operation")
)

// StockItem is one entry of a warehouse's embedded inventory ledger:
// the physical quantity of a product present in the warehouse and how much of
// it is reserved for pending orders. Available stock is always derived as
// quantity - reserved and never stored.
type StockItem struct {
	ID          int64     `json:"id" db:"id"`
	WarehouseID int64     `json:"warehouse_id" db:"warehouse_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Reserved    int       `json:"reserved" db:"reserved"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Product *Product `json:"product,omitempty"` // For joining with Product
}

// Available returns the sellable/transferable amount of the entry.
func (si *StockItem) Available() int {
	return si.Quantity - si.Reserved
}

// Warehouse represents a physical warehouse and owns its inventory ledger.
// All ledger mutations go through the methods below so the invariants
// 0 <= reserved <= quantity hold for every entry at all times; callers persist
// the whole aggregate as one unit after mutating it.
type Warehouse struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" binding:"required"`
	Code         string    `json:"code" db:"code" binding:"required"`
	Address      *string   `json:"address,omitempty" db:"address"`
	ContactPhone *string   `json:"contact_phone,omitempty" db:"contact_phone"`
	ManagerID    *int64    `json:"manager_id,omitempty" db:"manager_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Stock   []StockItem `json:"stock,omitempty"`
	Manager *User       `json:"manager,omitempty"` // For joining with User
}

// findStock returns the ledger entry for a product, or nil if none exists.
func (w *Warehouse) findStock(productID int64) *StockItem {
	for i := range w.Stock {
		if w.Stock[i].ProductID == productID {
			return &w.Stock[i]
		}
	}
	return nil
}

// AvailableStock returns quantity - reserved for the product's ledger entry,
// or 0 when the warehouse has no entry for the product.
func (w *Warehouse) AvailableStock(productID int64) int {
	if si := w.findStock(productID); si != nil {
		return si.Available()
	}
	return 0
}

// Quantity returns the physical quantity recorded for the product, or 0 when
// the warehouse has no ledger entry for it.
func (w *Warehouse) Quantity(productID int64) int {
	if si := w.findStock(productID); si != nil {
		return si.Quantity
	}
	return 0
}

// HasPositiveStock reports whether any ledger entry holds a positive quantity.
// A warehouse may only be deleted while this is false.
func (w *Warehouse) HasPositiveStock() bool {
	for i := range w.Stock {
		if w.Stock[i].Quantity > 0 {
			return true
		}
	}
	return false
}

// ApplyDelta mutates the product's ledger entry:
//   - add: creates the entry with quantity=amount, reserved=0 if missing,
//     otherwise increments quantity.
//   - subtract: fails with ErrInsufficientStock when amount exceeds the
//     available stock (a missing entry counts as available 0).
//   - set: writes quantity directly, bypassing the availability check, but
//     still refuses negative values and quantities below the reserved amount.
//
// Zero-quantity entries persist; entries are never removed.
func (w *Warehouse) ApplyDelta(productID int64, amount int, operation string) error {
	if operation != StockOpSet && amount < 0 {
		return fmt.Errorf("%w: amount %d", ErrNegativeQuantity, amount)
	}

	si := w.findStock(productID)

	switch operation {
	case StockOpAdd:
		if si == nil {
			w.Stock = append(w.Stock, StockItem{
				WarehouseID: w.ID,
				ProductID:   productID,
				Quantity:    amount,
				Reserved:    0,
			})
			return nil
		}
		si.Quantity += amount
		return nil

	case StockOpSubtract:
		if si == nil || amount > si.Available() {
			available := 0
			if si != nil {
				available = si.Available()
			}
			return fmt.Errorf("%w: product %d has %d available, requested %d",
				ErrInsufficientStock, productID, available, amount)
		}
		si.Quantity -= amount
		return nil

	case StockOpSet:
		return w.SetQuantity(productID, amount)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownStockOperation, operation)
	}
}

// SetQuantity writes the product's quantity directly. This is the
// authoritative-correction path used by approved adjustments: it does not go
// through the subtract availability check, but negative values and values
// below the entry's reserved amount are refused. A missing entry is created
// (with reserved 0) only when quantity > 0.
func (w *Warehouse) SetQuantity(productID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeQuantity, quantity)
	}
	si := w.findStock(productID)
	if si == nil {
		if quantity > 0 {
			w.Stock = append(w.Stock, StockItem{
				WarehouseID: w.ID,
				ProductID:   productID,
				Quantity:    quantity,
				Reserved:    0,
			})
		}
		return nil
	}
	if quantity < si.Reserved {
		return fmt.Errorf("%w: product %d has %d reserved, cannot set quantity to %d",
			ErrReservedExceedsQuantity, productID, si.Reserved, quantity)
	}
	si.Quantity = quantity
	return nil
}

// DebitAll subtracts every line's quantity from the ledger, validating all
// lines before mutating anything. Either every line is debited or none is.
func (w *Warehouse) DebitAll(lines []TransferItem) error {
	for _, line := range lines {
		if line.Quantity > w.AvailableStock(line.ProductID) {
			return fmt.Errorf("%w: product %d has %d available, requested %d",
				ErrInsufficientStock, line.ProductID, w.AvailableStock(line.ProductID), line.Quantity)
		}
	}
	for _, line := range lines {
		if err := w.ApplyDelta(line.ProductID, line.Quantity, StockOpSubtract); err != nil {
			return err
		}
	}
	return nil
}

// CreditAll adds every line's quantity to the ledger, creating entries as
// needed. Adding never fails for non-negative quantities.
func (w *Warehouse) CreditAll(lines []TransferItem) error {
	for _, line := range lines {
		if err := w.ApplyDelta(line.ProductID, line.Quantity, StockOpAdd); err != nil {
			return err
		}
	}
	return nil
}
