package services_test

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// testEnv wires the full service stack against a dedicated test database.
type testEnv struct {
	db          *sql.DB
	warehouses  services.WarehouseService
	products    services.ProductService
	adjustments services.AdjustmentService
	transfers   services.TransferService
	alerts      services.AlertService
	activity    services.ActivityService

	userID   int64
	mainID   int64
	eastID   int64
	widgetID int64
	gadgetID int64
}

// setupTestDB connects to TEST_DATABASE_URL, applies the schema and reseeds
// one user, two warehouses and two products. Skips when the variable is unset
// so the suite never touches a live database by accident.
func setupTestDB(t *testing.T) *testEnv {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../db_schema.sql")
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	if _, err := db.Exec(`TRUNCATE TABLE activity_logs, stock_transfer_items, stock_transfers,
		inventory_adjustment_lines, inventory_adjustments, warehouse_stock, warehouses, products, users
		RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}

	env := &testEnv{db: db}
	if err := db.QueryRow(`INSERT INTO users (username, password_hash, role_id)
		SELECT 'tester', 'x', id FROM roles WHERE name = 'manager' RETURNING id`).Scan(&env.userID); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.QueryRow(`INSERT INTO warehouses (name, code) VALUES ('Main', 'WH-MAIN') RETURNING id`).Scan(&env.mainID); err != nil {
		t.Fatalf("failed to seed warehouse: %v", err)
	}
	if err := db.QueryRow(`INSERT INTO warehouses (name, code) VALUES ('East', 'WH-EAST') RETURNING id`).Scan(&env.eastID); err != nil {
		t.Fatalf("failed to seed warehouse: %v", err)
	}
	if err := db.QueryRow(`INSERT INTO products (name, sku, unit_price, low_stock_threshold)
		VALUES ('Widget', 'SKU-WIDGET', 9.99, 10) RETURNING id`).Scan(&env.widgetID); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := db.QueryRow(`INSERT INTO products (name, sku, unit_price)
		VALUES ('Gadget', 'SKU-GADGET', 24.50) RETURNING id`).Scan(&env.gadgetID); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	warehouseRepo := repositories.NewWarehouseRepository(db)
	productRepo := repositories.NewProductRepository(db)
	adjustmentRepo := repositories.NewAdjustmentRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	env.activity = services.NewActivityService(activityRepo, db)
	env.warehouses = services.NewWarehouseService(warehouseRepo, productRepo, env.activity, db)
	env.products = services.NewProductService(productRepo, env.activity, db)
	env.adjustments = services.NewAdjustmentService(adjustmentRepo, warehouseRepo, productRepo, env.activity, db)
	env.transfers = services.NewTransferService(transferRepo, warehouseRepo, productRepo, env.activity, db)
	env.alerts = services.NewAlertService(warehouseRepo, productRepo, transferRepo, adjustmentRepo, db)
	return env
}

func (e *testEnv) mustMutate(t *testing.T, warehouseID, productID int64, quantity int, operation string) {
	t.Helper()
	_, err := e.warehouses.MutateStock(warehouseID, services.StockMutationRequest{
		ProductID: productID,
		Quantity:  quantity,
		Operation: operation,
	}, e.userID)
	if err != nil {
		t.Fatalf("MutateStock(%s %d) failed: %v", operation, quantity, err)
	}
}

func (e *testEnv) quantity(t *testing.T, warehouseID, productID int64) int {
	t.Helper()
	warehouse, err := e.warehouses.GetWarehouseByID(warehouseID)
	if err != nil {
		t.Fatalf("GetWarehouseByID failed: %v", err)
	}
	return warehouse.Quantity(productID)
}

func TestWarehouseService_MutateStock(t *testing.T) {
	env := setupTestDB(t)

	env.mustMutate(t, env.mainID, env.widgetID, 100, models.StockOpAdd)
	env.mustMutate(t, env.mainID, env.widgetID, 30, models.StockOpSubtract)
	if got := env.quantity(t, env.mainID, env.widgetID); got != 70 {
		t.Errorf("quantity after add/subtract = %d, want 70", got)
	}

	_, err := env.warehouses.MutateStock(env.mainID, services.StockMutationRequest{
		ProductID: env.widgetID,
		Quantity:  71,
		Operation: models.StockOpSubtract,
	}, env.userID)
	if !errors.Is(err, services.ErrInsufficientStock) {
		t.Errorf("over-subtract error = %v, want ErrInsufficientStock", err)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 70 {
		t.Errorf("quantity after failed subtract = %d, want 70 (unchanged)", got)
	}

	env.mustMutate(t, env.mainID, env.widgetID, 5, models.StockOpSet)
	if got := env.quantity(t, env.mainID, env.widgetID); got != 5 {
		t.Errorf("quantity after set = %d, want 5", got)
	}
}

func TestWarehouseService_DeleteRefusedWhileStocked(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 10, models.StockOpAdd)

	err := env.warehouses.DeleteWarehouse(env.mainID, env.userID)
	if !errors.Is(err, services.ErrWarehouseNotEmpty) {
		t.Fatalf("delete of stocked warehouse error = %v, want ErrWarehouseNotEmpty", err)
	}

	env.mustMutate(t, env.mainID, env.widgetID, 0, models.StockOpSet)
	if err := env.warehouses.DeleteWarehouse(env.mainID, env.userID); err != nil {
		t.Fatalf("delete of drained warehouse failed: %v", err)
	}
}

func TestAdjustmentService_Lifecycle(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 50, models.StockOpAdd)

	adjustment, err := env.adjustments.ProposeAdjustment(services.CreateAdjustmentRequest{
		WarehouseID: env.mainID,
		Reason:      models.AdjustmentReasonStockCount,
		Lines: []services.AdjustmentLineRequest{
			{ProductID: env.widgetID, PreviousQuantity: 50, NewQuantity: 47, Difference: -3},
		},
	}, env.userID)
	if err != nil {
		t.Fatalf("ProposeAdjustment failed: %v", err)
	}
	if adjustment.Status != models.AdjustmentStatusPending {
		t.Fatalf("new adjustment status = %s, want pending", adjustment.Status)
	}
	// Nothing applied until approval.
	if got := env.quantity(t, env.mainID, env.widgetID); got != 50 {
		t.Errorf("quantity after proposal = %d, want 50", got)
	}

	approved, err := env.adjustments.ApproveAdjustment(adjustment.ID, env.userID)
	if err != nil {
		t.Fatalf("ApproveAdjustment failed: %v", err)
	}
	if approved.Status != models.AdjustmentStatusApproved {
		t.Errorf("status after approval = %s, want approved", approved.Status)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 47 {
		t.Errorf("quantity after approval = %d, want 47", got)
	}

	// Approval is terminal.
	if _, err := env.adjustments.ApproveAdjustment(adjustment.ID, env.userID); !errors.Is(err, services.ErrInvalidState) {
		t.Errorf("second approval error = %v, want ErrInvalidState", err)
	}
	if err := env.adjustments.DeleteAdjustment(adjustment.ID, env.userID); !errors.Is(err, services.ErrInvalidState) {
		t.Errorf("delete of approved adjustment error = %v, want ErrInvalidState", err)
	}
}

func TestAdjustmentService_StaleProposalRefused(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 50, models.StockOpAdd)

	adjustment, err := env.adjustments.ProposeAdjustment(services.CreateAdjustmentRequest{
		WarehouseID: env.mainID,
		Reason:      models.AdjustmentReasonDamaged,
		Lines: []services.AdjustmentLineRequest{
			{ProductID: env.widgetID, PreviousQuantity: 50, NewQuantity: 45, Difference: -5},
		},
	}, env.userID)
	if err != nil {
		t.Fatalf("ProposeAdjustment failed: %v", err)
	}

	// Ledger moves between proposal and approval.
	env.mustMutate(t, env.mainID, env.widgetID, 10, models.StockOpAdd)

	if _, err := env.adjustments.ApproveAdjustment(adjustment.ID, env.userID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("stale approval error = %v, want ErrValidation", err)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 60 {
		t.Errorf("quantity after refused approval = %d, want 60 (untouched)", got)
	}
}

func TestTransferService_Lifecycle(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 100, models.StockOpAdd)
	env.mustMutate(t, env.mainID, env.gadgetID, 20, models.StockOpAdd)

	transfer, err := env.transfers.RequestTransfer(services.CreateTransferRequest{
		FromWarehouseID: env.mainID,
		ToWarehouseID:   env.eastID,
		Items: []services.TransferItemRequest{
			{ProductID: env.widgetID, Quantity: 40},
			{ProductID: env.gadgetID, Quantity: 20},
		},
	}, env.userID)
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}
	if transfer.Status != models.TransferStatusPending {
		t.Fatalf("new transfer status = %s, want pending", transfer.Status)
	}
	if transfer.TransferNumber == "" {
		t.Error("transfer number not assigned")
	}
	// Requesting moves nothing.
	if got := env.quantity(t, env.mainID, env.widgetID); got != 100 {
		t.Errorf("source quantity after request = %d, want 100", got)
	}

	dispatched, err := env.transfers.DispatchTransfer(transfer.ID, env.userID)
	if err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}
	if dispatched.Status != models.TransferStatusInTransit {
		t.Errorf("status after dispatch = %s, want in_transit", dispatched.Status)
	}
	// Source debited, destination untouched while in transit.
	if got := env.quantity(t, env.mainID, env.widgetID); got != 60 {
		t.Errorf("source quantity after dispatch = %d, want 60", got)
	}
	if got := env.quantity(t, env.eastID, env.widgetID); got != 0 {
		t.Errorf("destination quantity while in transit = %d, want 0", got)
	}

	completed, err := env.transfers.CompleteTransfer(transfer.ID, env.userID)
	if err != nil {
		t.Fatalf("CompleteTransfer failed: %v", err)
	}
	if completed.Status != models.TransferStatusCompleted {
		t.Errorf("status after completion = %s, want completed", completed.Status)
	}
	if got := env.quantity(t, env.eastID, env.widgetID); got != 40 {
		t.Errorf("destination quantity after completion = %d, want 40", got)
	}
	if got := env.quantity(t, env.eastID, env.gadgetID); got != 20 {
		t.Errorf("destination gadget quantity = %d, want 20", got)
	}

	// Terminal state rejects further transitions.
	if _, err := env.transfers.CancelTransfer(transfer.ID, env.userID); !errors.Is(err, services.ErrInvalidState) {
		t.Errorf("cancel of completed transfer error = %v, want ErrInvalidState", err)
	}
}

func TestTransferService_CancelInTransitReturnsStock(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 30, models.StockOpAdd)

	transfer, err := env.transfers.RequestTransfer(services.CreateTransferRequest{
		FromWarehouseID: env.mainID,
		ToWarehouseID:   env.eastID,
		Items:           []services.TransferItemRequest{{ProductID: env.widgetID, Quantity: 30}},
	}, env.userID)
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}
	if _, err := env.transfers.DispatchTransfer(transfer.ID, env.userID); err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 0 {
		t.Fatalf("source quantity after dispatch = %d, want 0", got)
	}

	cancelled, err := env.transfers.CancelTransfer(transfer.ID, env.userID)
	if err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	if cancelled.Status != models.TransferStatusCancelled {
		t.Errorf("status after cancel = %s, want cancelled", cancelled.Status)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 30 {
		t.Errorf("source quantity after cancel = %d, want 30 (returned)", got)
	}
	if got := env.quantity(t, env.eastID, env.widgetID); got != 0 {
		t.Errorf("destination quantity after cancel = %d, want 0", got)
	}
}

func TestTransferService_DispatchInsufficientStock(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 10, models.StockOpAdd)

	transfer, err := env.transfers.RequestTransfer(services.CreateTransferRequest{
		FromWarehouseID: env.mainID,
		ToWarehouseID:   env.eastID,
		Items:           []services.TransferItemRequest{{ProductID: env.widgetID, Quantity: 11}},
	}, env.userID)
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}

	if _, err := env.transfers.DispatchTransfer(transfer.ID, env.userID); !errors.Is(err, services.ErrInsufficientStock) {
		t.Fatalf("dispatch error = %v, want ErrInsufficientStock", err)
	}
	// Failed dispatch leaves the transfer pending and the ledger untouched.
	reloaded, err := env.transfers.GetTransferByID(transfer.ID)
	if err != nil {
		t.Fatalf("GetTransferByID failed: %v", err)
	}
	if reloaded.Status != models.TransferStatusPending {
		t.Errorf("status after failed dispatch = %s, want pending", reloaded.Status)
	}
	if got := env.quantity(t, env.mainID, env.widgetID); got != 10 {
		t.Errorf("source quantity after failed dispatch = %d, want 10", got)
	}
}

func TestTransferService_SameWarehouseRefused(t *testing.T) {
	env := setupTestDB(t)

	_, err := env.transfers.RequestTransfer(services.CreateTransferRequest{
		FromWarehouseID: env.mainID,
		ToWarehouseID:   env.mainID,
		Items:           []services.TransferItemRequest{{ProductID: env.widgetID, Quantity: 1}},
	}, env.userID)
	if !errors.Is(err, services.ErrSameWarehouse) {
		t.Fatalf("same-warehouse transfer error = %v, want ErrSameWarehouse", err)
	}
}

func TestAlertService_AlertsAndStats(t *testing.T) {
	env := setupTestDB(t)
	// Widget threshold is 10: 100 healthy, 4 critical low, gadget drained to 0.
	env.mustMutate(t, env.mainID, env.widgetID, 100, models.StockOpAdd)
	env.mustMutate(t, env.eastID, env.widgetID, 4, models.StockOpAdd)
	env.mustMutate(t, env.eastID, env.gadgetID, 3, models.StockOpAdd)
	env.mustMutate(t, env.eastID, env.gadgetID, 3, models.StockOpSubtract)

	alerts, err := env.alerts.GetAlerts(nil, nil)
	if err != nil {
		t.Fatalf("GetAlerts failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alert count = %d, want 2 (low widget, drained gadget)", len(alerts))
	}
	byProduct := map[int64]models.InventoryAlert{}
	for _, alert := range alerts {
		byProduct[alert.ProductID] = alert
	}
	widgetAlert := byProduct[env.widgetID]
	if widgetAlert.Level != models.AlertLevelLowStock || !widgetAlert.Critical {
		t.Errorf("widget alert = %+v, want critical low_stock", widgetAlert)
	}
	gadgetAlert := byProduct[env.gadgetID]
	if gadgetAlert.Level != models.AlertLevelOutOfStock {
		t.Errorf("gadget alert level = %s, want out_of_stock", gadgetAlert.Level)
	}

	stats, err := env.alerts.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalQuantity != 104 {
		t.Errorf("stats.TotalQuantity = %d, want 104", stats.TotalQuantity)
	}
	if stats.WarehouseCount != 2 {
		t.Errorf("stats.WarehouseCount = %d, want 2", stats.WarehouseCount)
	}
	if stats.LowStockCount != 1 || stats.OutOfStockCount != 1 {
		t.Errorf("stats counts = low %d / out %d, want 1 / 1", stats.LowStockCount, stats.OutOfStockCount)
	}
	// 104 widgets at 9.99: east gadget entry is empty.
	if got := stats.InventoryValue.StringFixed(2); got != "1038.96" {
		t.Errorf("stats.InventoryValue = %s, want 1038.96", got)
	}
}

func TestProductService_DeleteGuard(t *testing.T) {
	env := setupTestDB(t)
	env.mustMutate(t, env.mainID, env.widgetID, 5, models.StockOpAdd)

	err := env.products.DeleteProduct(env.widgetID, env.userID)
	if !errors.Is(err, services.ErrProductReferenced) {
		t.Fatalf("delete of stocked product error = %v, want ErrProductReferenced", err)
	}

	env.mustMutate(t, env.mainID, env.widgetID, 0, models.StockOpSet)
	if err := env.products.DeleteProduct(env.widgetID, env.userID); err != nil {
		t.Fatalf("delete of drained product failed: %v", err)
	}
}

func TestActivityService_RecordsWorkflowActions(t *testing.T) {
	env := setupTestDB(t)

	env.mustMutate(t, env.mainID, env.widgetID, 25, models.StockOpAdd)
	transfer, err := env.transfers.RequestTransfer(services.CreateTransferRequest{
		FromWarehouseID: env.mainID,
		ToWarehouseID:   env.eastID,
		Items:           []services.TransferItemRequest{{ProductID: env.widgetID, Quantity: 5}},
	}, env.userID)
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}

	entries, totalCount, err := env.activity.GetRecent(nil, 1, 20)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if totalCount < 2 {
		t.Fatalf("totalCount = %d, want at least 2", totalCount)
	}
	seen := map[string]bool{}
	for _, entry := range entries {
		seen[entry.Entity+"/"+entry.Action] = true
	}
	if !seen["warehouse/"+models.ActivityActionAdjust] {
		t.Errorf("missing warehouse/%s entry in %v", models.ActivityActionAdjust, seen)
	}
	if !seen["stock_transfer/"+models.ActivityActionCreate] {
		t.Errorf("missing stock_transfer/%s entry for %s in %v", models.ActivityActionCreate, transfer.TransferNumber, seen)
	}

	entity := "stock_transfer"
	filtered, _, err := env.activity.GetRecent(&entity, 1, 20)
	if err != nil {
		t.Fatalf("GetRecent(stock_transfer) failed: %v", err)
	}
	for _, entry := range filtered {
		if entry.Entity != "stock_transfer" {
			t.Errorf("filtered entry entity = %q, want stock_transfer", entry.Entity)
		}
	}
}
