package models_test

import (
	"testing"

	"storefront_backend/internal/models"
)

func TestStockTransfer_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.TransferStatusPending, models.TransferStatusInTransit, true},
		{models.TransferStatusPending, models.TransferStatusCancelled, true},
		{models.TransferStatusPending, models.TransferStatusCompleted, false},
		{models.TransferStatusPending, models.TransferStatusPending, false},
		{models.TransferStatusInTransit, models.TransferStatusCompleted, true},
		{models.TransferStatusInTransit, models.TransferStatusCancelled, true},
		{models.TransferStatusInTransit, models.TransferStatusPending, false},
		{models.TransferStatusCompleted, models.TransferStatusCancelled, false},
		{models.TransferStatusCompleted, models.TransferStatusInTransit, false},
		{models.TransferStatusCancelled, models.TransferStatusInTransit, false},
		{models.TransferStatusCancelled, models.TransferStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			transfer := &models.StockTransfer{Status: tt.from}
			if got := transfer.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestFormatTransferNumber(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "TRF-000001"},
		{42, "TRF-000042"},
		{999999, "TRF-999999"},
		{1000000, "TRF-1000000"},
	}
	for _, tt := range tests {
		if got := models.FormatTransferNumber(tt.seq); got != tt.want {
			t.Errorf("FormatTransferNumber(%d) = %q, want %q", tt.seq, got, tt.want)
		}
	}
}
