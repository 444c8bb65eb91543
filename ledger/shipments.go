package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shipmentModule = "ShipmentLedger"

// ShipmentLedger owns outbound shipment documents and keeps batch quantities
// consistent with their lines across the whole status lifecycle.
type ShipmentLedger struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewShipmentLedger(db *gorm.DB) *ShipmentLedger {
	return &ShipmentLedger{db: db, logger: config.GetLogger()}
}

func (l *ShipmentLedger) Create(ctx context.Context, input *models.NewShipment) (*models.Shipment, error) {

	shipmentNumber := strings.TrimSpace(input.ShipmentNumber)
	if shipmentNumber == "" {
		shipmentNumber = "SHP-" + strings.ToUpper(uuid.NewString()[:8])
	}

	shipment := models.Shipment{
		ShipmentNumber:  shipmentNumber,
		DestinationName: input.DestinationName,
		DestinationType: input.DestinationType,
		ScheduledDate:   input.ScheduledDate,
		Status:          models.ShipmentStatusPlanned,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
	}
	if err := l.db.WithContext(ctx).Create(&shipment).Error; err != nil {
		return nil, &StorageError{Op: "CreateShipment", Err: err}
	}
	return &shipment, nil
}

func (l *ShipmentLedger) Get(ctx context.Context, shipmentId int) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := l.db.WithContext(ctx).
		Preload("Lines").Preload("Lines.Batch").Preload("Restorations").
		First(&shipment, shipmentId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "shipment", Id: shipmentId}
		}
		return nil, &StorageError{Op: "GetShipment", Err: err}
	}
	return &shipment, nil
}

func (l *ShipmentLedger) Update(ctx context.Context, shipmentId int, input *models.NewShipment) (*models.Shipment, error) {

	shipment, err := l.Get(ctx, shipmentId)
	if err != nil {
		return nil, err
	}

	shipment.DestinationName = input.DestinationName
	shipment.DestinationType = input.DestinationType
	shipment.ScheduledDate = input.ScheduledDate
	if strings.TrimSpace(input.Notes) != "" {
		shipment.Notes = input.Notes
	}
	if err := l.db.WithContext(ctx).Omit("Lines", "Restorations").Save(shipment).Error; err != nil {
		return nil, &StorageError{Op: "UpdateShipment", Err: err}
	}
	return shipment, nil
}

// AddLines plans the requested quantity against the product's batches and,
// when fully coverable, debits every allocation and records one line each.
// A plan with anything remaining is rejected whole.
func (l *ShipmentLedger) AddLines(ctx context.Context, shipmentId int, productId int, qty decimal.Decimal, strategy models.PickStrategy) ([]*models.ShipmentLine, error) {

	release, err := utils.StockLock(ctx, "shipment:"+strconv.Itoa(shipmentId), shipmentModule, "AddLines")
	if err != nil {
		return nil, err
	}
	defer release()

	var lines []*models.ShipmentLine
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		shipment, err := lockShipmentTx(tx, shipmentId)
		if err != nil {
			return err
		}
		if shipment.Status != models.ShipmentStatusPlanned {
			return NewValidationError("cannot add lines to a %s shipment", string(shipment.Status))
		}

		plan, err := pickTx(tx, productId, qty, strategy)
		if err != nil {
			return err
		}
		if plan.Remaining.IsPositive() {
			return &InsufficientStockError{
				ProductId: productId,
				Available: qty.Sub(plan.Remaining),
				Requested: qty,
			}
		}

		for _, allocation := range plan.Allocations {
			if err := AdjustQuantityTx(tx, allocation.BatchId, allocation.Quantity.Neg()); err != nil {
				return err
			}
			line := models.ShipmentLine{
				ShipmentId:      shipmentId,
				BatchId:         allocation.BatchId,
				QuantityShipped: allocation.Quantity,
				PickedStrategy:  strategy,
			}
			if err := tx.Create(&line).Error; err != nil {
				return &StorageError{Op: "AddLines", Err: err}
			}
			lines = append(lines, &line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateLineQuantity moves a planned line to a new quantity, adjusting its
// batch by the difference.
func (l *ShipmentLedger) UpdateLineQuantity(ctx context.Context, lineId int, newQty decimal.Decimal) (*models.ShipmentLine, error) {

	if !newQty.IsPositive() {
		return nil, NewValidationError("line quantity must be positive")
	}

	var line models.ShipmentLine
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.First(&line, lineId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "shipment line", Id: lineId}
			}
			return &StorageError{Op: "UpdateLineQuantity", Err: err}
		}
		shipment, err := lockShipmentTx(tx, line.ShipmentId)
		if err != nil {
			return err
		}
		if shipment.Status != models.ShipmentStatusPlanned {
			return NewValidationError("cannot edit lines of a %s shipment", string(shipment.Status))
		}

		// extra demand debits the batch, reduced demand credits it
		delta := newQty.Sub(line.QuantityShipped)
		if err := AdjustQuantityTx(tx, line.BatchId, delta.Neg()); err != nil {
			return err
		}
		line.QuantityShipped = newQty
		if err := tx.Save(&line).Error; err != nil {
			return &StorageError{Op: "UpdateLineQuantity", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (l *ShipmentLedger) DeleteLine(ctx context.Context, lineId int) error {

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var line models.ShipmentLine
		if err := tx.First(&line, lineId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "shipment line", Id: lineId}
			}
			return &StorageError{Op: "DeleteLine", Err: err}
		}
		shipment, err := lockShipmentTx(tx, line.ShipmentId)
		if err != nil {
			return err
		}
		if shipment.Status != models.ShipmentStatusPlanned {
			return NewValidationError("cannot delete lines of a %s shipment", string(shipment.Status))
		}

		if err := AdjustQuantityTx(tx, line.BatchId, line.QuantityShipped); err != nil {
			return err
		}
		if err := tx.Delete(&line).Error; err != nil {
			return &StorageError{Op: "DeleteLine", Err: err}
		}
		return nil
	})
}

// SetStatus drives the shipment state machine.
//
//	planned   -> shipped | delivered | cancelled
//	shipped   -> delivered
//	cancelled -> planned (replan)
//
// Cancelling credits every line back and keeps restoration rows so a replan
// can re-debit. Cancelling an already-cancelled shipment is a no-op.
func (l *ShipmentLedger) SetStatus(ctx context.Context, shipmentId int, status models.ShipmentStatus, notes string) (*models.Shipment, error) {

	if !status.IsValid() {
		return nil, NewValidationError("unknown shipment status %q", string(status))
	}

	release, err := utils.StockLock(ctx, "shipment:"+strconv.Itoa(shipmentId), shipmentModule, "SetStatus")
	if err != nil {
		return nil, err
	}
	defer release()

	var result *models.Shipment
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		shipment, err := lockShipmentTx(tx, shipmentId)
		if err != nil {
			return err
		}

		if shipment.Status == models.ShipmentStatusCancelled && status == models.ShipmentStatusCancelled {
			// idempotent cancel
			result = shipment
			return nil
		}
		if !validShipmentTransition(shipment.Status, status) {
			return NewValidationError("cannot move shipment from %s to %s", string(shipment.Status), string(status))
		}

		switch status {
		case models.ShipmentStatusCancelled:
			if err := cancelShipmentTx(tx, shipment); err != nil {
				return err
			}
		case models.ShipmentStatusPlanned:
			if err := replanShipmentTx(tx, shipment); err != nil {
				return err
			}
		}

		shipment.Status = status
		if strings.TrimSpace(notes) != "" {
			shipment.Notes = notes
		}
		if err := tx.Omit("Lines", "Restorations").Save(shipment).Error; err != nil {
			return &StorageError{Op: "SetStatus", Err: err}
		}
		result = shipment
		return nil
	})
	if err != nil {
		config.LogError(l.logger, shipmentModule, "SetStatus", "shipment status transition failed", shipmentId, err)
		return nil, err
	}
	return result, nil
}

func validShipmentTransition(from, to models.ShipmentStatus) bool {
	switch from {
	case models.ShipmentStatusPlanned:
		return to == models.ShipmentStatusShipped || to == models.ShipmentStatusDelivered || to == models.ShipmentStatusCancelled
	case models.ShipmentStatusShipped:
		return to == models.ShipmentStatusDelivered
	case models.ShipmentStatusCancelled:
		return to == models.ShipmentStatusPlanned
	}
	return false
}

// cancelShipmentTx credits every line's batch, writes one restoration row per
// line and removes the lines.
func cancelShipmentTx(tx *gorm.DB, shipment *models.Shipment) error {

	var lines []models.ShipmentLine
	if err := tx.Where("shipment_id = ?", shipment.ID).Find(&lines).Error; err != nil {
		return &StorageError{Op: "cancelShipmentTx", Err: err}
	}

	for _, line := range lines {
		if err := AdjustQuantityTx(tx, line.BatchId, line.QuantityShipped); err != nil {
			return err
		}
		restoration := models.ShipmentRestoration{
			ShipmentId: shipment.ID,
			BatchId:    line.BatchId,
			Quantity:   line.QuantityShipped,
		}
		if err := tx.Create(&restoration).Error; err != nil {
			return &StorageError{Op: "cancelShipmentTx", Err: err}
		}
	}

	if err := tx.Where("shipment_id = ?", shipment.ID).Delete(&models.ShipmentLine{}).Error; err != nil {
		return &StorageError{Op: "cancelShipmentTx", Err: err}
	}
	return nil
}

// replanShipmentTx replays the restoration rows: each batch is debited again
// and a fresh fifo line is created. Any shortfall aborts the whole replan.
func replanShipmentTx(tx *gorm.DB, shipment *models.Shipment) error {

	var restorations []models.ShipmentRestoration
	if err := tx.Where("shipment_id = ?", shipment.ID).Find(&restorations).Error; err != nil {
		return &StorageError{Op: "replanShipmentTx", Err: err}
	}

	for _, restoration := range restorations {
		if err := AdjustQuantityTx(tx, restoration.BatchId, restoration.Quantity.Neg()); err != nil {
			return err
		}
		line := models.ShipmentLine{
			ShipmentId:      shipment.ID,
			BatchId:         restoration.BatchId,
			QuantityShipped: restoration.Quantity,
			PickedStrategy:  models.PickStrategyFifo,
		}
		if err := tx.Create(&line).Error; err != nil {
			return &StorageError{Op: "replanShipmentTx", Err: err}
		}
	}

	if err := tx.Where("shipment_id = ?", shipment.ID).Delete(&models.ShipmentRestoration{}).Error; err != nil {
		return &StorageError{Op: "replanShipmentTx", Err: err}
	}
	return nil
}

// Delete removes the shipment document. A non-cancelled shipment still holds
// debits, so its lines are credited back first.
func (l *ShipmentLedger) Delete(ctx context.Context, shipmentId int) error {

	release, err := utils.StockLock(ctx, "shipment:"+strconv.Itoa(shipmentId), shipmentModule, "Delete")
	if err != nil {
		return err
	}
	defer release()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		shipment, err := lockShipmentTx(tx, shipmentId)
		if err != nil {
			return err
		}

		if shipment.Status != models.ShipmentStatusCancelled {
			var lines []models.ShipmentLine
			if err := tx.Where("shipment_id = ?", shipmentId).Find(&lines).Error; err != nil {
				return &StorageError{Op: "DeleteShipment", Err: err}
			}
			for _, line := range lines {
				if err := AdjustQuantityTx(tx, line.BatchId, line.QuantityShipped); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("shipment_id = ?", shipmentId).Delete(&models.ShipmentLine{}).Error; err != nil {
			return &StorageError{Op: "DeleteShipment", Err: err}
		}
		if err := tx.Where("shipment_id = ?", shipmentId).Delete(&models.ShipmentRestoration{}).Error; err != nil {
			return &StorageError{Op: "DeleteShipment", Err: err}
		}
		if err := tx.Delete(&models.Shipment{}, shipmentId).Error; err != nil {
			return &StorageError{Op: "DeleteShipment", Err: err}
		}
		return nil
	})
}

func lockShipmentTx(tx *gorm.DB, shipmentId int) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := tx.Clauses(lockForUpdate()).First(&shipment, shipmentId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "shipment", Id: shipmentId}
		}
		return nil, &StorageError{Op: "lockShipmentTx", Err: err}
	}
	return &shipment, nil
}
