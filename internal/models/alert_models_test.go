package models_test

import (
	"testing"

	"storefront_backend/internal/models"
)

func TestClassifyStockLevel(t *testing.T) {
	tests := []struct {
		name         string
		available    int
		threshold    int
		wantLevel    string
		wantCritical bool
	}{
		{"healthy", 50, 10, "", false},
		{"just above threshold", 11, 10, "", false},
		{"at threshold", 10, 10, models.AlertLevelLowStock, false},
		{"below threshold", 6, 10, models.AlertLevelLowStock, false},
		{"at half threshold", 5, 10, models.AlertLevelLowStock, true},
		{"below half threshold", 3, 10, models.AlertLevelLowStock, true},
		{"odd threshold floors the half", 3, 7, models.AlertLevelLowStock, true},
		{"odd threshold just above floor", 4, 7, models.AlertLevelLowStock, false},
		{"zero available", 0, 10, models.AlertLevelOutOfStock, true},
		{"negative available", -2, 10, models.AlertLevelOutOfStock, true},
		{"zero available beats any threshold", 0, 0, models.AlertLevelOutOfStock, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, critical := models.ClassifyStockLevel(tt.available, tt.threshold)
			if level != tt.wantLevel || critical != tt.wantCritical {
				t.Errorf("ClassifyStockLevel(%d, %d) = (%q, %v), want (%q, %v)",
					tt.available, tt.threshold, level, critical, tt.wantLevel, tt.wantCritical)
			}
		})
	}
}

func TestProduct_EffectiveThreshold(t *testing.T) {
	custom := 25
	zero := 0
	tests := []struct {
		name    string
		product models.Product
		want    int
	}{
		{"custom threshold", models.Product{LowStockThreshold: &custom}, 25},
		{"unset falls back to default", models.Product{}, models.DefaultLowStockThreshold},
		{"zero falls back to default", models.Product{LowStockThreshold: &zero}, models.DefaultLowStockThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.EffectiveThreshold(); got != tt.want {
				t.Errorf("EffectiveThreshold() = %d, want %d", got, tt.want)
			}
		})
	}
}
