package models

import (
	"fmt"
	"time"
)

// Transfer statuses. completed and cancelled are terminal.
const (
	TransferStatusPending   = "pending"
	TransferStatusInTransit = "in_transit"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// TransferItem is one product line of a stock transfer.
type TransferItem struct {
	ID         int64   `json:"id" db:"id"`
	TransferID int64   `json:"transfer_id" db:"transfer_id"`
	ProductID  int64   `json:"product_id" db:"product_id" binding:"required"`
	Quantity   int     `json:"quantity" db:"quantity" binding:"required,gte=1"`
	Notes      *string `json:"notes,omitempty" db:"notes"`

	Product *Product `json:"product,omitempty"`
}

// StockTransfer moves quantity between two warehouses through a two-phase
// state machine: the source ledger is debited when the transfer enters
// in_transit and the destination is credited only on completion, so the units
// are never counted as available in both warehouses at once. While in transit
// they are accounted for by neither warehouse.
type StockTransfer struct {
	ID              int64      `json:"id" db:"id"`
	TransferNumber  string     `json:"transfer_number" db:"transfer_number"`
	FromWarehouseID int64      `json:"from_warehouse_id" db:"from_warehouse_id"`
	ToWarehouseID   int64      `json:"to_warehouse_id" db:"to_warehouse_id"`
	Status          string     `json:"status" db:"status"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	RequestedBy     int64      `json:"requested_by" db:"requested_by"`
	DispatchedBy    *int64     `json:"dispatched_by,omitempty" db:"dispatched_by"`
	DispatchedAt    *time.Time `json:"dispatched_at,omitempty" db:"dispatched_at"`
	CompletedBy     *int64     `json:"completed_by,omitempty" db:"completed_by"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledBy     *int64     `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	Items         []TransferItem `json:"items"`
	FromWarehouse *Warehouse     `json:"from_warehouse,omitempty"`
	ToWarehouse   *Warehouse     `json:"to_warehouse,omitempty"`
}

// CanTransitionTo reports whether the transfer may move to the target status:
// pending -> in_transit | cancelled, in_transit -> completed | cancelled.
func (t *StockTransfer) CanTransitionTo(target string) bool {
	switch t.Status {
	case TransferStatusPending:
		return target == TransferStatusInTransit || target == TransferStatusCancelled
	case TransferStatusInTransit:
		return target == TransferStatusCompleted || target == TransferStatusCancelled
	}
	return false
}

// FormatTransferNumber renders the human-readable sequential transfer number.
func FormatTransferNumber(seq int64) string {
	return fmt.Sprintf("TRF-%06d", seq)
}
