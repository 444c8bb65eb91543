package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const recallModule = "RecallLedger"

// RecallLedger owns batch recalls. An active recall holds a debit of
// quantity_affected against each linked batch; cancellation returns the
// debit, completion makes it permanent.
type RecallLedger struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRecallLedger(db *gorm.DB) *RecallLedger {
	return &RecallLedger{db: db, logger: config.GetLogger()}
}

func (l *RecallLedger) Create(ctx context.Context, input *models.NewRecall) (*models.Recall, error) {

	recallNumber := strings.TrimSpace(input.RecallNumber)
	if recallNumber == "" {
		recallNumber = "RCL-" + strings.ToUpper(uuid.NewString()[:8])
	}
	severity := input.SeverityLevel
	if severity == "" {
		severity = models.SeverityLevelMedium
	}
	if !severity.IsValid() {
		return nil, NewValidationError("unknown severity level %q", string(severity))
	}

	recall := models.Recall{
		RecallNumber:               recallNumber,
		Title:                      input.Title,
		Reason:                     input.Reason,
		SeverityLevel:              severity,
		Status:                     models.RecallStatusInitiated,
		InitiatedBy:                input.InitiatedBy,
		InitiatedDate:              time.Now().UTC(),
		CustomerNotificationSent:   utils.NewFalse(),
		RegulatoryNotificationSent: utils.NewFalse(),
		Notes:                      input.Notes,
	}
	if err := l.db.WithContext(ctx).Create(&recall).Error; err != nil {
		return nil, &StorageError{Op: "CreateRecall", Err: err}
	}
	return &recall, nil
}

func (l *RecallLedger) Get(ctx context.Context, recallId int) (*models.Recall, error) {
	var recall models.Recall
	if err := l.db.WithContext(ctx).
		Preload("Batches").Preload("Batches.Batch").
		First(&recall, recallId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recall", Id: recallId}
		}
		return nil, &StorageError{Op: "GetRecall", Err: err}
	}
	return &recall, nil
}

func (l *RecallLedger) Update(ctx context.Context, recallId int, input *models.NewRecall) (*models.Recall, error) {

	recall, err := l.Get(ctx, recallId)
	if err != nil {
		return nil, err
	}
	if input.SeverityLevel != "" && !input.SeverityLevel.IsValid() {
		return nil, NewValidationError("unknown severity level %q", string(input.SeverityLevel))
	}

	recall.Title = input.Title
	recall.Reason = input.Reason
	if input.SeverityLevel != "" {
		recall.SeverityLevel = input.SeverityLevel
	}
	recall.InitiatedBy = input.InitiatedBy
	if strings.TrimSpace(input.Notes) != "" {
		recall.Notes = input.Notes
	}
	if err := l.db.WithContext(ctx).Omit("Batches").Save(recall).Error; err != nil {
		return nil, &StorageError{Op: "UpdateRecall", Err: err}
	}
	return recall, nil
}

// AddBatch links a batch to an active recall and debits the affected
// quantity. Unlike shipment lines, the quantity must be explicit and
// positive: a recall must state exactly what it pulls.
func (l *RecallLedger) AddBatch(ctx context.Context, recallId int, batchId int, quantityAffected decimal.Decimal, notes string) (*models.RecallBatch, error) {

	if !quantityAffected.IsPositive() {
		return nil, NewValidationError("quantity affected must be positive")
	}

	var row models.RecallBatch
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		recall, err := lockRecallTx(tx, recallId)
		if err != nil {
			return err
		}
		if !recall.Status.IsActive() {
			return NewValidationError("cannot add batches to a %s recall", string(recall.Status))
		}

		if err := AdjustQuantityTx(tx, batchId, quantityAffected.Neg()); err != nil {
			return err
		}
		row = models.RecallBatch{
			RecallId:         recallId,
			BatchId:          batchId,
			QuantityAffected: quantityAffected,
			RecoveryStatus:   models.RecoveryStatusPending,
			Notes:            notes,
		}
		if err := tx.Create(&row).Error; err != nil {
			return &StorageError{Op: "AddRecallBatch", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SetStatus drives the recall state machine.
//
//	initiated <-> in_progress        (active, interchangeable)
//	active     -> completed          (terminal, debits stand)
//	active     -> cancelled          (credits every batch back, keeps rows)
//	cancelled  -> initiated | in_progress  (reopen, re-debits every batch)
//
// Cancelling an already-cancelled recall is a no-op. A reopen that cannot
// re-debit any single batch aborts whole.
func (l *RecallLedger) SetStatus(ctx context.Context, recallId int, status models.RecallStatus, notes string) (*models.Recall, error) {

	if !status.IsValid() {
		return nil, NewValidationError("unknown recall status %q", string(status))
	}

	release, err := utils.StockLock(ctx, "recall:"+strconv.Itoa(recallId), recallModule, "SetStatus")
	if err != nil {
		return nil, err
	}
	defer release()

	var result *models.Recall
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		recall, err := lockRecallTx(tx, recallId)
		if err != nil {
			return err
		}

		if recall.Status == models.RecallStatusCancelled && status == models.RecallStatusCancelled {
			// idempotent cancel
			result = recall
			return nil
		}
		if recall.Status == models.RecallStatusCompleted {
			return NewValidationError("recall is completed and cannot change status")
		}

		switch {
		case recall.Status.IsActive() && status.IsActive():
			// initiated <-> in_progress, nothing to move
		case recall.Status.IsActive() && status == models.RecallStatusCompleted:
			now := time.Now().UTC()
			recall.CompletedDate = &now
		case recall.Status.IsActive() && status == models.RecallStatusCancelled:
			if err := creditRecallBatchesTx(tx, recallId); err != nil {
				return err
			}
		case recall.Status == models.RecallStatusCancelled && status.IsActive():
			if err := debitRecallBatchesTx(tx, recallId); err != nil {
				return err
			}
		default:
			return NewValidationError("cannot move recall from %s to %s", string(recall.Status), string(status))
		}

		if status != models.RecallStatusCompleted {
			recall.CompletedDate = nil
		}
		recall.Status = status
		if strings.TrimSpace(notes) != "" {
			recall.Notes = notes
		}
		if err := tx.Omit("Batches").Save(recall).Error; err != nil {
			return &StorageError{Op: "SetStatus", Err: err}
		}
		result = recall
		return nil
	})
	if err != nil {
		config.LogError(l.logger, recallModule, "SetStatus", "recall status transition failed", recallId, err)
		return nil, err
	}
	return result, nil
}

func creditRecallBatchesTx(tx *gorm.DB, recallId int) error {
	rows, err := recallBatchRowsTx(tx, recallId)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := AdjustQuantityTx(tx, row.BatchId, row.QuantityAffected); err != nil {
			return err
		}
	}
	return nil
}

func debitRecallBatchesTx(tx *gorm.DB, recallId int) error {
	rows, err := recallBatchRowsTx(tx, recallId)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := AdjustQuantityTx(tx, row.BatchId, row.QuantityAffected.Neg()); err != nil {
			return err
		}
	}
	return nil
}

func recallBatchRowsTx(tx *gorm.DB, recallId int) ([]models.RecallBatch, error) {
	var rows []models.RecallBatch
	if err := tx.Where("recall_id = ?", recallId).Find(&rows).Error; err != nil {
		return nil, &StorageError{Op: "recallBatchRowsTx", Err: err}
	}
	return rows, nil
}

// RecallBatchPatch updates a recall-batch link. Nil fields are untouched.
type RecallBatchPatch struct {
	QuantityAffected *decimal.Decimal
	RecoveryStatus   *models.RecoveryStatus
	RecoveryDate     *time.Time
	Notes            *string
}

// UpdateRecallBatch applies the patch. A quantity change moves the batch by
// the difference, except under a cancelled recall where nothing is currently
// debited and only the stored value changes. Recovery bookkeeping never
// touches stock.
func (l *RecallLedger) UpdateRecallBatch(ctx context.Context, recallBatchId int, patch *RecallBatchPatch) (*models.RecallBatch, error) {

	var row models.RecallBatch
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.First(&row, recallBatchId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "recall batch", Id: recallBatchId}
			}
			return &StorageError{Op: "UpdateRecallBatch", Err: err}
		}
		recall, err := lockRecallTx(tx, row.RecallId)
		if err != nil {
			return err
		}

		if patch.QuantityAffected != nil {
			newQty := *patch.QuantityAffected
			if !newQty.IsPositive() {
				return NewValidationError("quantity affected must be positive")
			}
			if recall.Status != models.RecallStatusCancelled {
				diff := newQty.Sub(row.QuantityAffected)
				if !diff.IsZero() {
					if err := AdjustQuantityTx(tx, row.BatchId, diff.Neg()); err != nil {
						return err
					}
				}
			}
			row.QuantityAffected = newQty
		}
		if patch.RecoveryStatus != nil {
			if !patch.RecoveryStatus.IsValid() {
				return NewValidationError("unknown recovery status %q", string(*patch.RecoveryStatus))
			}
			row.RecoveryStatus = *patch.RecoveryStatus
			if row.RecoveryStatus == models.RecoveryStatusRecovered && patch.RecoveryDate == nil && row.RecoveryDate == nil {
				now := time.Now().UTC()
				row.RecoveryDate = &now
			}
		}
		if patch.RecoveryDate != nil {
			row.RecoveryDate = patch.RecoveryDate
		}
		if patch.Notes != nil {
			row.Notes = *patch.Notes
		}

		if err := tx.Save(&row).Error; err != nil {
			return &StorageError{Op: "UpdateRecallBatch", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// RemoveBatch unlinks a batch. Under a non-cancelled recall the affected
// quantity is still debited and gets credited back; under a cancelled recall
// it was already restored and must not be credited twice.
func (l *RecallLedger) RemoveBatch(ctx context.Context, recallBatchId int) error {

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var row models.RecallBatch
		if err := tx.First(&row, recallBatchId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "recall batch", Id: recallBatchId}
			}
			return &StorageError{Op: "RemoveRecallBatch", Err: err}
		}
		recall, err := lockRecallTx(tx, row.RecallId)
		if err != nil {
			return err
		}

		if recall.Status != models.RecallStatusCancelled {
			if err := AdjustQuantityTx(tx, row.BatchId, row.QuantityAffected); err != nil {
				return err
			}
		}
		if err := tx.Delete(&row).Error; err != nil {
			return &StorageError{Op: "RemoveRecallBatch", Err: err}
		}
		return nil
	})
}

// Delete removes the recall and its batch links, crediting the links back
// unless the recall is cancelled.
func (l *RecallLedger) Delete(ctx context.Context, recallId int) error {

	release, err := utils.StockLock(ctx, "recall:"+strconv.Itoa(recallId), recallModule, "Delete")
	if err != nil {
		return err
	}
	defer release()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		recall, err := lockRecallTx(tx, recallId)
		if err != nil {
			return err
		}

		if recall.Status != models.RecallStatusCancelled {
			if err := creditRecallBatchesTx(tx, recallId); err != nil {
				return err
			}
		}
		if err := tx.Where("recall_id = ?", recallId).Delete(&models.RecallBatch{}).Error; err != nil {
			return &StorageError{Op: "DeleteRecall", Err: err}
		}
		if err := tx.Delete(&models.Recall{}, recallId).Error; err != nil {
			return &StorageError{Op: "DeleteRecall", Err: err}
		}
		return nil
	})
}

// UpdateNotifications flips the customer / regulatory notification flags.
func (l *RecallLedger) UpdateNotifications(ctx context.Context, recallId int, customerSent *bool, regulatorySent *bool) (*models.Recall, error) {

	recall, err := l.Get(ctx, recallId)
	if err != nil {
		return nil, err
	}
	if customerSent != nil {
		recall.CustomerNotificationSent = customerSent
	}
	if regulatorySent != nil {
		recall.RegulatoryNotificationSent = regulatorySent
	}
	if err := l.db.WithContext(ctx).Omit("Batches").Save(recall).Error; err != nil {
		return nil, &StorageError{Op: "UpdateNotifications", Err: err}
	}
	return recall, nil
}

func lockRecallTx(tx *gorm.DB, recallId int) (*models.Recall, error) {
	var recall models.Recall
	if err := tx.Clauses(lockForUpdate()).First(&recall, recallId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "recall", Id: recallId}
		}
		return nil, &StorageError{Op: "lockRecallTx", Err: err}
	}
	return &recall, nil
}
