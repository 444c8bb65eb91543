package ledger

import (
	"context"
	"errors"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchStore is the only entry point for batch quantity writes. Every debit
// and credit runs against a row locked FOR UPDATE, with an additive UPDATE so
// concurrent transactions never overwrite each other's balance.
type BatchStore struct {
	db *gorm.DB
}

func NewBatchStore(db *gorm.DB) *BatchStore {
	return &BatchStore{db: db}
}

// AdjustQuantity applies a signed delta to a batch inside its own transaction.
// Positive delta credits, negative debits.
func (s *BatchStore) AdjustQuantity(ctx context.Context, batchId int, delta decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AdjustQuantityTx(tx, batchId, delta)
	})
}

// AdjustQuantityTx applies a signed delta inside the caller's transaction.
// Fails with InsufficientStockError if the result would be negative; the
// caller's transaction is expected to roll back the whole operation.
func AdjustQuantityTx(tx *gorm.DB, batchId int, delta decimal.Decimal) error {

	var batch models.Batch
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, batchId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "batch", Id: batchId}
		}
		return &StorageError{Op: "AdjustQuantityTx", Err: err}
	}

	if batch.Quantity.Add(delta).IsNegative() {
		return &InsufficientStockError{
			BatchId:   batchId,
			Available: batch.Quantity,
			Requested: delta.Neg(),
		}
	}

	if err := tx.Exec("UPDATE inventory_batches SET quantity = quantity + ? WHERE id = ?", delta, batchId).Error; err != nil {
		return &StorageError{Op: "AdjustQuantityTx", Err: err}
	}
	return nil
}

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// lockBatchTx loads a batch FOR UPDATE without modifying it.
func lockBatchTx(tx *gorm.DB, batchId int) (*models.Batch, error) {
	var batch models.Batch
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, batchId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "batch", Id: batchId}
		}
		return nil, &StorageError{Op: "lockBatchTx", Err: err}
	}
	return &batch, nil
}
