package models

import "time"

// Adjustment statuses. pending is the only non-terminal state.
const (
	AdjustmentStatusPending  = "pending"
	AdjustmentStatusApproved = "approved"
	AdjustmentStatusRejected = "rejected"
)

// Adjustment reasons.
const (
	AdjustmentReasonStockCount = "stock_count"
	AdjustmentReasonDamaged    = "damaged"
	AdjustmentReasonLost       = "lost"
	AdjustmentReasonFound      = "found"
	AdjustmentReasonCorrection = "correction"
	AdjustmentReasonOther      = "other"
)

// ValidAdjustmentReason reports whether reason is one of the known categories.
func ValidAdjustmentReason(reason string) bool {
	switch reason {
	case AdjustmentReasonStockCount, AdjustmentReasonDamaged, AdjustmentReasonLost,
		AdjustmentReasonFound, AdjustmentReasonCorrection, AdjustmentReasonOther:
		return true
	}
	return false
}

// AdjustmentLine is one proposed quantity correction within an adjustment.
// PreviousQuantity must match the warehouse ledger at proposal time and
// Difference must equal NewQuantity - PreviousQuantity.
type AdjustmentLine struct {
	ID               int64 `json:"id" db:"id"`
	AdjustmentID     int64 `json:"adjustment_id" db:"adjustment_id"`
	ProductID        int64 `json:"product_id" db:"product_id" binding:"required"`
	PreviousQuantity int   `json:"previous_quantity" db:"previous_quantity"`
	NewQuantity      int   `json:"new_quantity" db:"new_quantity"`
	Difference       int   `json:"difference" db:"difference"`

	Product *Product `json:"product,omitempty"`
}

// Consistent reports whether the line's difference matches its quantities.
func (l *AdjustmentLine) Consistent() bool {
	return l.Difference == l.NewQuantity-l.PreviousQuantity
}

// InventoryAdjustment is an immutable correction proposal against one
// warehouse's ledger. It is applied to the ledger only on approval; approval
// and rejection happen exactly once, and approved adjustments are permanent
// history that can never be deleted.
type InventoryAdjustment struct {
	ID          int64      `json:"id" db:"id"`
	WarehouseID int64      `json:"warehouse_id" db:"warehouse_id"`
	Reason      string     `json:"reason" db:"reason"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	Status      string     `json:"status" db:"status"`
	RequestedBy int64      `json:"requested_by" db:"requested_by"`
	ApprovedBy  *int64     `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Lines     []AdjustmentLine `json:"lines"`
	Warehouse *Warehouse       `json:"warehouse,omitempty"`
	Requester *User            `json:"requester,omitempty"`
	Approver  *User            `json:"approver,omitempty"`
}

// CanReview reports whether the adjustment may still be approved or rejected.
func (a *InventoryAdjustment) CanReview() bool {
	return a.Status == AdjustmentStatusPending
}

// CanDelete reports whether the adjustment may be removed. Approved
// adjustments are kept forever.
func (a *InventoryAdjustment) CanDelete() bool {
	return a.Status == AdjustmentStatusPending || a.Status == AdjustmentStatusRejected
}
