package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func respondTo(t *testing.T, ctx context.Context, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	respondError(c, err)
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w.Code, body
}

func TestRespondErrorValidationIsBadRequest(t *testing.T) {
	code, body := respondTo(t, context.Background(), utils.NewValidationError("product %d not found", 7))
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", code)
	}
	if body["error"] != "product 7 not found" {
		t.Errorf("error = %q, want the rejection reason", body["error"])
	}
}

func TestRespondErrorRecordNotFound(t *testing.T) {
	code, _ := respondTo(t, context.Background(), utils.ErrorRecordNotFound)
	if code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", code)
	}
}

func TestRespondErrorBatchShortfall(t *testing.T) {
	code, body := respondTo(t, context.Background(), &ledger.InsufficientStockError{
		BatchId:   3,
		Available: decimal.NewFromInt(2),
		Requested: decimal.NewFromInt(5),
	})
	if code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", code)
	}
	if body["batch_id"] != float64(3) {
		t.Errorf("batch_id = %v, want 3", body["batch_id"])
	}
	if _, ok := body["product_id"]; ok {
		t.Errorf("product_id should be absent for a batch-level shortfall")
	}
}

func TestRespondErrorPlanShortfallNamesProduct(t *testing.T) {
	code, body := respondTo(t, context.Background(), &ledger.InsufficientStockError{
		ProductId: 7,
		Available: decimal.NewFromInt(10),
		Requested: decimal.NewFromInt(25),
	})
	if code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", code)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "product 7") {
		t.Errorf("error = %q, want a product-level message", msg)
	}
	if strings.Contains(msg, "batch 0") {
		t.Errorf("error = %q mentions batch 0", msg)
	}
	if _, ok := body["batch_id"]; ok {
		t.Errorf("batch_id should be absent for a plan-level shortfall")
	}
	if body["product_id"] != float64(7) {
		t.Errorf("product_id = %v, want 7", body["product_id"])
	}
}

func TestRespondErrorOpaqueCarriesCorrelationId(t *testing.T) {
	ctx := utils.SetCorrelationIdInContext(context.Background(), "cid-123")
	code, body := respondTo(t, ctx, errors.New("dial tcp: connection refused"))
	if code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", code)
	}
	if body["error"] != "internal error" {
		t.Errorf("error = %q, internals must not leak", body["error"])
	}
	if body["correlation_id"] != "cid-123" {
		t.Errorf("correlation_id = %v, want cid-123", body["correlation_id"])
	}
}
