package ledger

import (
	"context"

	"github.com/freshtrace/freshtrace_backend/models"
	"gorm.io/gorm"
)

// DependencyGuard protects referential integrity around destructive deletes.
// A batch or product with live references must not silently disappear.
type DependencyGuard struct {
	db *gorm.DB
}

func NewDependencyGuard(db *gorm.DB) *DependencyGuard {
	return &DependencyGuard{db: db}
}

// DeleteBatch deletes a batch unless it is still referenced. Recall links
// under cancelled or completed recalls are stale bookkeeping and are cleaned
// up on the way. With force, links under live recalls are also unlinked and
// credited back first; force never bypasses processing, shipment or incident
// references.
func (g *DependencyGuard) DeleteBatch(ctx context.Context, batchId int, force bool) error {

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if _, err := lockBatchTx(tx, batchId); err != nil {
			return err
		}

		if err := checkBatchRef(tx, &models.ProcessingInput{}, batchId, "batch is used by processing sessions"); err != nil {
			return err
		}
		if err := checkBatchRef(tx, &models.ShipmentLine{}, batchId, "batch is allocated to shipments"); err != nil {
			return err
		}
		if err := checkBatchRef(tx, &models.IncidentBatch{}, batchId, "batch is linked to food safety incidents"); err != nil {
			return err
		}

		var recallRows []models.RecallBatch
		if err := tx.Where("batch_id = ?", batchId).Find(&recallRows).Error; err != nil {
			return &StorageError{Op: "DeleteBatch", Err: err}
		}

		for _, row := range recallRows {
			var status models.RecallStatus
			if err := tx.Model(&models.Recall{}).
				Where("id = ?", row.RecallId).
				Select("status").Scan(&status).Error; err != nil {
				return &StorageError{Op: "DeleteBatch", Err: err}
			}

			switch {
			case status == models.RecallStatusCancelled || status == models.RecallStatusCompleted:
				// stale link, safe to clean up without moving stock
			case force:
				// live recall: return the held quantity before unlinking
				if err := AdjustQuantityTx(tx, batchId, row.QuantityAffected); err != nil {
					return err
				}
			default:
				return &DependencyConflictError{
					Resource: "batch",
					Message:  "batch is part of an active recall",
				}
			}
			if err := tx.Delete(&models.RecallBatch{}, row.ID).Error; err != nil {
				return &StorageError{Op: "DeleteBatch", Err: err}
			}
		}

		if err := tx.Delete(&models.Batch{}, batchId).Error; err != nil {
			return &StorageError{Op: "DeleteBatch", Err: err}
		}
		return nil
	})
}

func checkBatchRef(tx *gorm.DB, model interface{}, batchId int, message string) error {
	var count int64
	if err := tx.Model(model).Where("batch_id = ?", batchId).Count(&count).Error; err != nil {
		return &StorageError{Op: "checkBatchRef", Err: err}
	}
	if count > 0 {
		return &DependencyConflictError{Resource: "batch", Message: message}
	}
	return nil
}

// DeleteProduct deletes a product unless batches, reorder rules or
// processing outputs still reference it.
func (g *DependencyGuard) DeleteProduct(ctx context.Context, productId int) error {

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productId).Count(&count).Error; err != nil {
			return &StorageError{Op: "DeleteProduct", Err: err}
		}
		if count <= 0 {
			return &NotFoundError{Resource: "product", Id: productId}
		}

		if err := checkProductRef(tx, &models.Batch{}, productId, "product has inventory batches"); err != nil {
			return err
		}
		if err := checkProductRef(tx, &models.ReorderRule{}, productId, "product has reorder rules"); err != nil {
			return err
		}
		if err := checkProductRef(tx, &models.ProcessingOutput{}, productId, "product appears in processing outputs"); err != nil {
			return err
		}

		if err := tx.Delete(&models.Product{}, productId).Error; err != nil {
			return &StorageError{Op: "DeleteProduct", Err: err}
		}
		return nil
	})
}

func checkProductRef(tx *gorm.DB, model interface{}, productId int, message string) error {
	var count int64
	if err := tx.Model(model).Where("product_id = ?", productId).Count(&count).Error; err != nil {
		return &StorageError{Op: "checkProductRef", Err: err}
	}
	if count > 0 {
		return &DependencyConflictError{Resource: "product", Message: message}
	}
	return nil
}
