package models_test

import (
	"errors"
	"testing"

	"storefront_backend/internal/models"
)

func stockedWarehouse() *models.Warehouse {
	return &models.Warehouse{
		ID:   1,
		Name: "Main Warehouse",
		Code: "WH-MAIN",
		Stock: []models.StockItem{
			{WarehouseID: 1, ProductID: 10, Quantity: 100, Reserved: 20},
			{WarehouseID: 1, ProductID: 11, Quantity: 5, Reserved: 0},
			{WarehouseID: 1, ProductID: 12, Quantity: 0, Reserved: 0},
		},
	}
}

func TestWarehouse_AvailableStock(t *testing.T) {
	w := stockedWarehouse()

	tests := []struct {
		name      string
		productID int64
		want      int
	}{
		{"quantity minus reserved", 10, 80},
		{"nothing reserved", 11, 5},
		{"zero quantity entry", 12, 0},
		{"no ledger entry", 99, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.AvailableStock(tt.productID); got != tt.want {
				t.Errorf("AvailableStock(%d) = %d, want %d", tt.productID, got, tt.want)
			}
		})
	}
}

func TestWarehouse_ApplyDelta(t *testing.T) {
	tests := []struct {
		name         string
		productID    int64
		amount       int
		operation    string
		wantErr      error
		wantQuantity int
	}{
		{"add to existing entry", 10, 50, models.StockOpAdd, nil, 150},
		{"add creates missing entry", 99, 25, models.StockOpAdd, nil, 25},
		{"add zero is a no-op", 10, 0, models.StockOpAdd, nil, 100},
		{"subtract within available", 10, 80, models.StockOpSubtract, nil, 20},
		{"subtract more than available", 10, 81, models.StockOpSubtract, models.ErrInsufficientStock, 100},
		{"subtract ignores reserved-free quantity", 11, 5, models.StockOpSubtract, nil, 0},
		{"subtract from missing entry", 99, 1, models.StockOpSubtract, models.ErrInsufficientStock, 0},
		{"set overrides quantity", 10, 500, models.StockOpSet, nil, 500},
		{"set below subtract floor is allowed", 10, 30, models.StockOpSet, nil, 30},
		{"set below reserved refused", 10, 19, models.StockOpSet, models.ErrReservedExceedsQuantity, 100},
		{"set negative refused", 10, -1, models.StockOpSet, models.ErrNegativeQuantity, 100},
		{"negative add refused", 10, -5, models.StockOpAdd, models.ErrNegativeQuantity, 100},
		{"unknown operation", 10, 5, "increment", models.ErrUnknownStockOperation, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := stockedWarehouse()
			err := w.ApplyDelta(tt.productID, tt.amount, tt.operation)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ApplyDelta() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ApplyDelta() unexpected error: %v", err)
			}
			if got := w.Quantity(tt.productID); got != tt.wantQuantity {
				t.Errorf("quantity after ApplyDelta = %d, want %d", got, tt.wantQuantity)
			}
		})
	}
}

func TestWarehouse_ApplyDelta_SetIsIdempotent(t *testing.T) {
	w := stockedWarehouse()
	for i := 0; i < 3; i++ {
		if err := w.ApplyDelta(10, 42, models.StockOpSet); err != nil {
			t.Fatalf("set #%d failed: %v", i+1, err)
		}
	}
	if got := w.Quantity(10); got != 42 {
		t.Errorf("quantity after repeated set = %d, want 42", got)
	}
}

func TestWarehouse_SetQuantity_MissingEntry(t *testing.T) {
	w := stockedWarehouse()

	// Setting a missing entry to zero must not create a ledger row.
	if err := w.SetQuantity(99, 0); err != nil {
		t.Fatalf("SetQuantity(99, 0) failed: %v", err)
	}
	if len(w.Stock) != 3 {
		t.Errorf("zero set created a ledger entry, have %d entries", len(w.Stock))
	}

	if err := w.SetQuantity(99, 7); err != nil {
		t.Fatalf("SetQuantity(99, 7) failed: %v", err)
	}
	if got := w.Quantity(99); got != 7 {
		t.Errorf("quantity after set = %d, want 7", got)
	}
	if got := w.AvailableStock(99); got != 7 {
		t.Errorf("new entry available = %d, want 7 (reserved must start at 0)", got)
	}
}

func TestWarehouse_ReplenishThenPick(t *testing.T) {
	// A receipt followed by an order pick against the same entry.
	w := &models.Warehouse{ID: 2, Name: "East", Code: "WH-EAST"}

	if err := w.ApplyDelta(10, 30, models.StockOpAdd); err != nil {
		t.Fatalf("receipt failed: %v", err)
	}
	if err := w.ApplyDelta(10, 12, models.StockOpSubtract); err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if got := w.Quantity(10); got != 18 {
		t.Errorf("quantity = %d, want 18", got)
	}

	// Draining to zero keeps the entry on the ledger.
	if err := w.ApplyDelta(10, 18, models.StockOpSubtract); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(w.Stock) != 1 || w.Stock[0].Quantity != 0 {
		t.Errorf("drained entry should persist with quantity 0, stock = %+v", w.Stock)
	}
}

func TestWarehouse_DebitAll_AllOrNothing(t *testing.T) {
	w := stockedWarehouse()
	lines := []models.TransferItem{
		{ProductID: 10, Quantity: 50},
		{ProductID: 11, Quantity: 6}, // only 5 available
	}

	err := w.DebitAll(lines)
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("DebitAll() error = %v, want ErrInsufficientStock", err)
	}
	// The first line must not have been applied.
	if got := w.Quantity(10); got != 100 {
		t.Errorf("quantity of product 10 after failed debit = %d, want 100", got)
	}
	if got := w.Quantity(11); got != 5 {
		t.Errorf("quantity of product 11 after failed debit = %d, want 5", got)
	}
}

func TestWarehouse_DebitAllCreditAll_RoundTrip(t *testing.T) {
	source := stockedWarehouse()
	destination := &models.Warehouse{ID: 3, Name: "West", Code: "WH-WEST"}
	lines := []models.TransferItem{
		{ProductID: 10, Quantity: 40},
		{ProductID: 11, Quantity: 5},
	}

	if err := source.DebitAll(lines); err != nil {
		t.Fatalf("DebitAll() failed: %v", err)
	}
	if got := source.Quantity(10); got != 60 {
		t.Errorf("source quantity of product 10 = %d, want 60", got)
	}

	if err := destination.CreditAll(lines); err != nil {
		t.Fatalf("CreditAll() failed: %v", err)
	}
	if got := destination.Quantity(10); got != 40 {
		t.Errorf("destination quantity of product 10 = %d, want 40", got)
	}
	if got := destination.AvailableStock(11); got != 5 {
		t.Errorf("destination available of product 11 = %d, want 5", got)
	}

	// Cancelling in transit credits the same lines back to the source.
	if err := source.CreditAll(lines); err != nil {
		t.Fatalf("CreditAll() back to source failed: %v", err)
	}
	if got := source.Quantity(10); got != 100 {
		t.Errorf("source quantity of product 10 after cancel = %d, want 100", got)
	}
}

func TestWarehouse_HasPositiveStock(t *testing.T) {
	tests := []struct {
		name  string
		stock []models.StockItem
		want  bool
	}{
		{"empty ledger", nil, false},
		{"only zero entries", []models.StockItem{{ProductID: 1, Quantity: 0}}, false},
		{"one positive entry", []models.StockItem{{ProductID: 1, Quantity: 0}, {ProductID: 2, Quantity: 3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &models.Warehouse{Stock: tt.stock}
			if got := w.HasPositiveStock(); got != tt.want {
				t.Errorf("HasPositiveStock() = %v, want %v", got, tt.want)
			}
		})
	}
}
