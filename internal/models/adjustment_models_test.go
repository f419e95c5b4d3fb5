package models_test

import (
	"testing"

	"storefront_backend/internal/models"
)

func TestValidAdjustmentReason(t *testing.T) {
	valid := []string{"stock_count", "damaged", "lost", "found", "correction", "other"}
	for _, reason := range valid {
		if !models.ValidAdjustmentReason(reason) {
			t.Errorf("ValidAdjustmentReason(%q) = false, want true", reason)
		}
	}
	for _, reason := range []string{"", "shrinkage", "STOCK_COUNT"} {
		if models.ValidAdjustmentReason(reason) {
			t.Errorf("ValidAdjustmentReason(%q) = true, want false", reason)
		}
	}
}

func TestAdjustmentLine_Consistent(t *testing.T) {
	tests := []struct {
		name string
		line models.AdjustmentLine
		want bool
	}{
		{"increase", models.AdjustmentLine{PreviousQuantity: 10, NewQuantity: 15, Difference: 5}, true},
		{"decrease", models.AdjustmentLine{PreviousQuantity: 10, NewQuantity: 4, Difference: -6}, true},
		{"no change", models.AdjustmentLine{PreviousQuantity: 10, NewQuantity: 10, Difference: 0}, true},
		{"wrong sign", models.AdjustmentLine{PreviousQuantity: 10, NewQuantity: 4, Difference: 6}, false},
		{"off by one", models.AdjustmentLine{PreviousQuantity: 10, NewQuantity: 15, Difference: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInventoryAdjustment_Lifecycle(t *testing.T) {
	tests := []struct {
		status    string
		canReview bool
		canDelete bool
	}{
		{models.AdjustmentStatusPending, true, true},
		{models.AdjustmentStatusApproved, false, false},
		{models.AdjustmentStatusRejected, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			a := &models.InventoryAdjustment{Status: tt.status}
			if got := a.CanReview(); got != tt.canReview {
				t.Errorf("CanReview() = %v, want %v", got, tt.canReview)
			}
			if got := a.CanDelete(); got != tt.canDelete {
				t.Errorf("CanDelete() = %v, want %v", got, tt.canDelete)
			}
		})
	}
}
