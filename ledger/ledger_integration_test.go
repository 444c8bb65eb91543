package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupIntegration(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "freshtrace_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable(db)
	return db
}

func mustQty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(context.Background(), db, &models.NewProduct{
		Name:       name,
		AnimalType: "salmon",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return product
}

func seedBatch(t *testing.T, db *gorm.DB, productId int, number string, quantity string, arrival string, expiration *string) *models.Batch {
	t.Helper()
	arrivalDate, err := time.Parse("2006-01-02", arrival)
	if err != nil {
		t.Fatalf("parse arrival: %v", err)
	}
	input := models.NewBatch{
		ProductId:   productId,
		BatchNumber: number,
		Quantity:    mustQty(quantity),
		ArrivalDate: arrivalDate,
	}
	if expiration != nil {
		expirationDate, err := time.Parse("2006-01-02", *expiration)
		if err != nil {
			t.Fatalf("parse expiration: %v", err)
		}
		input.ExpirationDate = &expirationDate
	}
	batch, err := models.CreateBatch(context.Background(), db, &input)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	return batch
}

func batchQuantity(t *testing.T, db *gorm.DB, batchId int) decimal.Decimal {
	t.Helper()
	var batch models.Batch
	if err := db.First(&batch, batchId).Error; err != nil {
		t.Fatalf("fetch batch %d: %v", batchId, err)
	}
	return batch.Quantity
}

func TestShipmentCancelReplanRoundTrip(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	shipments := ledger.NewShipmentLedger(db)

	product := seedProduct(t, db, "Salmon Fillet")
	a := seedBatch(t, db, product.ID, "A", "20", "2024-01-01", nil)
	b := seedBatch(t, db, product.ID, "B", "50", "2024-01-02", nil)

	shipment, err := shipments.Create(ctx, &models.NewShipment{DestinationName: "Harbor Market"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lines, err := shipments.AddLines(ctx, shipment.ID, product.ID, mustQty("30"), models.PickStrategyFifo)
	if err != nil {
		t.Fatalf("AddLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if got := batchQuantity(t, db, a.ID); !got.IsZero() {
		t.Errorf("batch A after allocation = %s, want 0", got)
	}
	if got := batchQuantity(t, db, b.ID); !got.Equal(mustQty("40")) {
		t.Errorf("batch B after allocation = %s, want 40", got)
	}

	// cancel restores both batches and keeps restoration rows
	if _, err := shipments.SetStatus(ctx, shipment.ID, models.ShipmentStatusCancelled, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := batchQuantity(t, db, a.ID); !got.Equal(mustQty("20")) {
		t.Errorf("batch A after cancel = %s, want 20", got)
	}
	if got := batchQuantity(t, db, b.ID); !got.Equal(mustQty("50")) {
		t.Errorf("batch B after cancel = %s, want 50", got)
	}
	var restorationCount int64
	db.Model(&models.ShipmentRestoration{}).Where("shipment_id = ?", shipment.ID).Count(&restorationCount)
	if restorationCount != 2 {
		t.Fatalf("restorations = %d, want 2", restorationCount)
	}

	// cancelling again changes nothing
	if _, err := shipments.SetStatus(ctx, shipment.ID, models.ShipmentStatusCancelled, ""); err != nil {
		t.Fatalf("idempotent cancel: %v", err)
	}
	if got := batchQuantity(t, db, a.ID); !got.Equal(mustQty("20")) {
		t.Errorf("batch A after repeated cancel = %s, want 20", got)
	}

	// replan re-debits from the restoration rows and clears them
	replanned, err := shipments.SetStatus(ctx, shipment.ID, models.ShipmentStatusPlanned, "")
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if replanned.Status != models.ShipmentStatusPlanned {
		t.Errorf("status after replan = %s, want planned", replanned.Status)
	}
	if got := batchQuantity(t, db, a.ID); !got.IsZero() {
		t.Errorf("batch A after replan = %s, want 0", got)
	}
	if got := batchQuantity(t, db, b.ID); !got.Equal(mustQty("40")) {
		t.Errorf("batch B after replan = %s, want 40", got)
	}
	var newLines []models.ShipmentLine
	db.Where("shipment_id = ?", shipment.ID).Find(&newLines)
	total := decimal.Zero
	for _, line := range newLines {
		total = total.Add(line.QuantityShipped)
		if line.PickedStrategy != models.PickStrategyFifo {
			t.Errorf("replanned line strategy = %s, want fifo", line.PickedStrategy)
		}
	}
	if !total.Equal(mustQty("30")) {
		t.Errorf("replanned total = %s, want 30", total)
	}
	db.Model(&models.ShipmentRestoration{}).Where("shipment_id = ?", shipment.ID).Count(&restorationCount)
	if restorationCount != 0 {
		t.Errorf("restorations after replan = %d, want 0", restorationCount)
	}
}

func TestShipmentRejectsPartialAllocation(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	shipments := ledger.NewShipmentLedger(db)

	product := seedProduct(t, db, "Cod Loin")
	batch := seedBatch(t, db, product.ID, "C1", "10", "2024-02-01", nil)

	shipment, err := shipments.Create(ctx, &models.NewShipment{DestinationName: "Dockside"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = shipments.AddLines(ctx, shipment.ID, product.ID, mustQty("25"), models.PickStrategyFifo)
	var insufficient *ledger.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("AddLines err = %v, want InsufficientStockError", err)
	}

	// nothing may be applied partially
	if got := batchQuantity(t, db, batch.ID); !got.Equal(mustQty("10")) {
		t.Errorf("batch after rejected allocation = %s, want 10", got)
	}
	var lineCount int64
	db.Model(&models.ShipmentLine{}).Where("shipment_id = ?", shipment.ID).Count(&lineCount)
	if lineCount != 0 {
		t.Errorf("lines after rejected allocation = %d, want 0", lineCount)
	}
}

func TestFefoPlanOrdersByExpirationWithNilLast(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	planner := ledger.NewAllocationPlanner(db)

	product := seedProduct(t, db, "Tuna Steak")
	late := "2024-06-01"
	soon := "2024-03-01"
	noExpiry := seedBatch(t, db, product.ID, "N", "10", "2024-01-01", nil)
	expiresLate := seedBatch(t, db, product.ID, "L", "10", "2024-01-02", &late)
	expiresSoon := seedBatch(t, db, product.ID, "S", "10", "2024-01-03", &soon)

	plan, err := planner.Pick(ctx, product.ID, mustQty("25"), models.PickStrategyFefo)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if len(plan.Allocations) != 3 {
		t.Fatalf("allocations = %d, want 3", len(plan.Allocations))
	}
	if plan.Allocations[0].BatchId != expiresSoon.ID {
		t.Errorf("first pick = %d, want soonest-expiring %d", plan.Allocations[0].BatchId, expiresSoon.ID)
	}
	if plan.Allocations[1].BatchId != expiresLate.ID {
		t.Errorf("second pick = %d, want %d", plan.Allocations[1].BatchId, expiresLate.ID)
	}
	if plan.Allocations[2].BatchId != noExpiry.ID {
		t.Errorf("last pick = %d, want nil-expiration batch %d", plan.Allocations[2].BatchId, noExpiry.ID)
	}
	if !plan.Allocations[2].Quantity.Equal(mustQty("5")) {
		t.Errorf("last pick quantity = %s, want 5", plan.Allocations[2].Quantity)
	}

	// planning is advisory, nothing was debited
	if got := batchQuantity(t, db, noExpiry.ID); !got.Equal(mustQty("10")) {
		t.Errorf("batch after plan = %s, want 10", got)
	}
}

func TestRecallLifecycle(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	recalls := ledger.NewRecallLedger(db)

	product := seedProduct(t, db, "Haddock")
	batch := seedBatch(t, db, product.ID, "H1", "30", "2024-03-01", nil)

	recall, err := recalls.Create(ctx, &models.NewRecall{Title: "Listeria risk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// recalling the entire batch is allowed
	if _, err := recalls.AddBatch(ctx, recall.ID, batch.ID, mustQty("30"), ""); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if got := batchQuantity(t, db, batch.ID); !got.IsZero() {
		t.Fatalf("batch after recall = %s, want 0", got)
	}

	// one unit more must fail
	other := seedBatch(t, db, product.ID, "H2", "5", "2024-03-02", nil)
	_, err = recalls.AddBatch(ctx, recall.ID, other.ID, mustQty("6"), "")
	var insufficient *ledger.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("AddBatch over quantity err = %v, want InsufficientStockError", err)
	}

	// cancel credits the batch back and keeps the link rows
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusCancelled, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := batchQuantity(t, db, batch.ID); !got.Equal(mustQty("30")) {
		t.Errorf("batch after cancel = %s, want 30", got)
	}
	var rowCount int64
	db.Model(&models.RecallBatch{}).Where("recall_id = ?", recall.ID).Count(&rowCount)
	if rowCount != 1 {
		t.Errorf("recall batch rows after cancel = %d, want 1", rowCount)
	}

	// cancelling again is a no-op
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusCancelled, ""); err != nil {
		t.Fatalf("idempotent cancel: %v", err)
	}
	if got := batchQuantity(t, db, batch.ID); !got.Equal(mustQty("30")) {
		t.Errorf("batch after repeated cancel = %s, want 30", got)
	}

	// reopening re-debits
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusInProgress, ""); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := batchQuantity(t, db, batch.ID); !got.IsZero() {
		t.Errorf("batch after reopen = %s, want 0", got)
	}

	// completing stamps the date and the debit stands
	completed, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusCompleted, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedDate == nil {
		t.Errorf("completed recall has no completed date")
	}
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusInitiated, ""); err == nil {
		t.Errorf("reopening a completed recall should fail")
	}
}

func TestRecallReopenAbortsWholeOnShortage(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	recalls := ledger.NewRecallLedger(db)
	store := ledger.NewBatchStore(db)

	product := seedProduct(t, db, "Mackerel")
	first := seedBatch(t, db, product.ID, "M1", "10", "2024-04-01", nil)
	second := seedBatch(t, db, product.ID, "M2", "10", "2024-04-02", nil)

	recall, err := recalls.Create(ctx, &models.NewRecall{Title: "Histamine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := recalls.AddBatch(ctx, recall.ID, first.ID, mustQty("10"), ""); err != nil {
		t.Fatalf("AddBatch first: %v", err)
	}
	if _, err := recalls.AddBatch(ctx, recall.ID, second.ID, mustQty("10"), ""); err != nil {
		t.Fatalf("AddBatch second: %v", err)
	}
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusCancelled, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// drain the second batch while the recall is cancelled
	if err := store.AdjustQuantity(ctx, second.ID, mustQty("-7")); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}

	_, err = recalls.SetStatus(ctx, recall.ID, models.RecallStatusInitiated, "")
	var insufficient *ledger.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("reopen err = %v, want InsufficientStockError", err)
	}

	// nothing was re-debited, including the first batch
	if got := batchQuantity(t, db, first.ID); !got.Equal(mustQty("10")) {
		t.Errorf("first batch after aborted reopen = %s, want 10", got)
	}
	if got := batchQuantity(t, db, second.ID); !got.Equal(mustQty("3")) {
		t.Errorf("second batch after aborted reopen = %s, want 3", got)
	}
	var status models.RecallStatus
	db.Model(&models.Recall{}).Where("id = ?", recall.ID).Select("status").Scan(&status)
	if status != models.RecallStatusCancelled {
		t.Errorf("recall status after aborted reopen = %s, want cancelled", status)
	}
}

func TestProcessingSessionDeleteRestoresAdditively(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	processing := ledger.NewProcessingLedger(db)
	store := ledger.NewBatchStore(db)

	product := seedProduct(t, db, "Whole Halibut")
	batch := seedBatch(t, db, product.ID, "W1", "100", "2024-05-01", nil)

	session, err := processing.CreateSession(ctx, &models.NewProcessingSession{
		SessionName: "Morning cut",
		SessionDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := processing.AddInput(ctx, session.ID, batch.ID, mustQty("40")); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if got := batchQuantity(t, db, batch.ID); !got.Equal(mustQty("60")) {
		t.Fatalf("batch after input = %s, want 60", got)
	}

	// a debit lands on the same batch before the session is deleted
	if err := store.AdjustQuantity(ctx, batch.ID, mustQty("-10")); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}

	if err := processing.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	// 100 - 40 - 10 + 40 = 90; the intervening debit survives
	if got := batchQuantity(t, db, batch.ID); !got.Equal(mustQty("90")) {
		t.Errorf("batch after session delete = %s, want 90", got)
	}
}

func TestProcessingOutputBounds(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	processing := ledger.NewProcessingLedger(db)

	product := seedProduct(t, db, "Sea Bass")
	batch := seedBatch(t, db, product.ID, "SB1", "50", "2024-05-10", nil)
	fillet := seedProduct(t, db, "Sea Bass Fillet")

	session, err := processing.CreateSession(ctx, &models.NewProcessingSession{
		SessionName: "Filleting",
		SessionDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// outputs before any input are rejected
	if _, err := processing.AddOutput(ctx, session.ID, fillet.ID, "fillet", mustQty("5")); err == nil {
		t.Fatalf("AddOutput without inputs should fail")
	}

	if _, err := processing.AddInput(ctx, session.ID, batch.ID, mustQty("20")); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if _, err := processing.AddOutput(ctx, session.ID, fillet.ID, "fillet", mustQty("12")); err != nil {
		t.Fatalf("AddOutput: %v", err)
	}
	// 12 + 9 > 20
	if _, err := processing.AddOutput(ctx, session.ID, fillet.ID, "trim", mustQty("9")); err == nil {
		t.Fatalf("AddOutput exceeding input mass should fail")
	}
}

func TestDependencyGuardBlocksAndReleases(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	recalls := ledger.NewRecallLedger(db)
	guard := ledger.NewDependencyGuard(db)

	product := seedProduct(t, db, "Trout")
	batch := seedBatch(t, db, product.ID, "T1", "15", "2024-06-01", nil)

	recall, err := recalls.Create(ctx, &models.NewRecall{Title: "Packaging defect"})
	if err != nil {
		t.Fatalf("Create recall: %v", err)
	}
	if _, err := recalls.AddBatch(ctx, recall.ID, batch.ID, mustQty("15"), ""); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}

	// active recall blocks the delete
	err = guard.DeleteBatch(ctx, batch.ID, false)
	var conflict *ledger.DependencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("DeleteBatch err = %v, want DependencyConflictError", err)
	}

	// after cancellation the stale link is cleaned up and the delete goes through
	if _, err := recalls.SetStatus(ctx, recall.ID, models.RecallStatusCancelled, ""); err != nil {
		t.Fatalf("cancel recall: %v", err)
	}
	if err := guard.DeleteBatch(ctx, batch.ID, false); err != nil {
		t.Fatalf("DeleteBatch after cancel: %v", err)
	}
	var linkCount int64
	db.Model(&models.RecallBatch{}).Where("batch_id = ?", batch.ID).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("recall links after delete = %d, want 0", linkCount)
	}

	// product delete is blocked while a batch references it
	remaining := seedBatch(t, db, product.ID, "T2", "5", "2024-06-02", nil)
	err = guard.DeleteProduct(ctx, product.ID)
	if !errors.As(err, &conflict) {
		t.Fatalf("DeleteProduct err = %v, want DependencyConflictError", err)
	}
	if err := guard.DeleteBatch(ctx, remaining.ID, false); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if err := guard.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct after batches removed: %v", err)
	}
}

func TestCatalogRejectionsAreTyped(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	_, err := models.CreateBatch(ctx, db, &models.NewBatch{
		ProductId:   999999,
		BatchNumber: "X1",
		Quantity:    mustQty("5"),
		ArrivalDate: time.Now().UTC(),
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("CreateBatch with unknown product err = %v, want ValidationError", err)
	}

	if _, err := models.CreateSupplier(ctx, db, &models.NewSupplier{Name: "North Pier"}); err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	_, err = models.CreateSupplier(ctx, db, &models.NewSupplier{Name: "North Pier"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("duplicate supplier err = %v, want ValidationError", err)
	}
}

func TestRestockSuggestionCacheInvalidation(t *testing.T) {
	db := setupIntegration(t)
	ctx := context.Background()

	product := seedProduct(t, db, "Pollock")
	seedBatch(t, db, product.ID, "P1", "4", "2024-07-01", nil)
	rule, err := models.CreateReorderRule(ctx, db, &models.NewReorderRule{
		ProductId: product.ID,
		MinQty:    mustQty("10"),
		TargetQty: mustQty("50"),
	})
	if err != nil {
		t.Fatalf("CreateReorderRule: %v", err)
	}

	suggestions, err := models.ListRestockSuggestions(ctx, db)
	if err != nil {
		t.Fatalf("ListRestockSuggestions: %v", err)
	}
	if len(suggestions) != 1 || !suggestions[0].SuggestedQty.Equal(mustQty("46")) {
		t.Fatalf("suggestions = %+v, want one of 46", suggestions)
	}

	// a second read comes from the cache and must agree
	again, err := models.ListRestockSuggestions(ctx, db)
	if err != nil {
		t.Fatalf("cached ListRestockSuggestions: %v", err)
	}
	if len(again) != 1 || !again[0].SuggestedQty.Equal(mustQty("46")) {
		t.Fatalf("cached suggestions = %+v, want one of 46", again)
	}

	// rule changes invalidate, so the new target shows up immediately
	if _, err := models.UpdateReorderRule(ctx, db, rule.ID, &models.NewReorderRule{
		ProductId: product.ID,
		MinQty:    mustQty("10"),
		TargetQty: mustQty("60"),
	}); err != nil {
		t.Fatalf("UpdateReorderRule: %v", err)
	}
	updated, err := models.ListRestockSuggestions(ctx, db)
	if err != nil {
		t.Fatalf("ListRestockSuggestions after update: %v", err)
	}
	if len(updated) != 1 || !updated[0].SuggestedQty.Equal(mustQty("56")) {
		t.Fatalf("suggestions after update = %+v, want one of 56", updated)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("freshtrace-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("freshtrace-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=freshtrace_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
