package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const processingModule = "ProcessingLedger"

// ProcessingLedger records cutting/processing sessions that consume raw
// batches (inputs) and yield products (outputs).
type ProcessingLedger struct {
	db *gorm.DB
}

func NewProcessingLedger(db *gorm.DB) *ProcessingLedger {
	return &ProcessingLedger{db: db}
}

func (l *ProcessingLedger) CreateSession(ctx context.Context, input *models.NewProcessingSession) (*models.ProcessingSession, error) {

	session := models.ProcessingSession{
		SessionName: input.SessionName,
		SessionDate: input.SessionDate,
		Notes:       input.Notes,
	}
	if err := l.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, &StorageError{Op: "CreateSession", Err: err}
	}
	return &session, nil
}

// SessionDetail adds the derived totals a session view needs.
type SessionDetail struct {
	models.ProcessingSession
	TotalInput      decimal.Decimal `json:"total_input"`
	TotalOutput     decimal.Decimal `json:"total_output"`
	YieldPercentage decimal.Decimal `json:"yield_percentage"`
}

func (l *ProcessingLedger) GetSession(ctx context.Context, sessionId int) (*SessionDetail, error) {

	var session models.ProcessingSession
	if err := l.db.WithContext(ctx).
		Preload("Inputs").Preload("Inputs.Batch").
		Preload("Outputs").Preload("Outputs.Product").
		First(&session, sessionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "processing session", Id: sessionId}
		}
		return nil, &StorageError{Op: "GetSession", Err: err}
	}

	detail := SessionDetail{ProcessingSession: session}
	for _, in := range session.Inputs {
		detail.TotalInput = detail.TotalInput.Add(in.QuantityUsed)
	}
	for _, out := range session.Outputs {
		detail.TotalOutput = detail.TotalOutput.Add(out.Weight)
	}
	if detail.TotalInput.IsPositive() {
		detail.YieldPercentage = detail.TotalOutput.
			Div(detail.TotalInput).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return &detail, nil
}

// AddInput consumes quantityUsed from a batch into the session.
func (l *ProcessingLedger) AddInput(ctx context.Context, sessionId int, batchId int, quantityUsed decimal.Decimal) (*models.ProcessingInput, error) {

	if !quantityUsed.IsPositive() {
		return nil, NewValidationError("quantity used must be positive")
	}

	var input models.ProcessingInput
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := sessionExistsTx(tx, sessionId); err != nil {
			return err
		}
		if err := AdjustQuantityTx(tx, batchId, quantityUsed.Neg()); err != nil {
			return err
		}
		input = models.ProcessingInput{
			SessionId:    sessionId,
			BatchId:      batchId,
			QuantityUsed: quantityUsed,
		}
		if err := tx.Create(&input).Error; err != nil {
			return &StorageError{Op: "AddInput", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &input, nil
}

// AddOutput records a yielded product. Outputs cannot exist without inputs
// and their accumulated weight cannot exceed total input mass.
func (l *ProcessingLedger) AddOutput(ctx context.Context, sessionId int, productId int, outputType string, weight decimal.Decimal) (*models.ProcessingOutput, error) {

	if !weight.IsPositive() {
		return nil, NewValidationError("output weight must be positive")
	}

	var output models.ProcessingOutput
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := sessionExistsTx(tx, sessionId); err != nil {
			return err
		}
		if err := utils.ValidateResourceId[models.Product](ctx, tx, productId); err != nil {
			return &NotFoundError{Resource: "product", Id: productId}
		}

		var totalInput decimal.NullDecimal
		if err := tx.Model(&models.ProcessingInput{}).
			Where("session_id = ?", sessionId).
			Select("SUM(quantity_used)").Scan(&totalInput).Error; err != nil {
			return &StorageError{Op: "AddOutput", Err: err}
		}
		if !totalInput.Valid || !totalInput.Decimal.IsPositive() {
			return NewValidationError("session has no inputs to yield outputs from")
		}

		var totalOutput decimal.NullDecimal
		if err := tx.Model(&models.ProcessingOutput{}).
			Where("session_id = ?", sessionId).
			Select("SUM(weight)").Scan(&totalOutput).Error; err != nil {
			return &StorageError{Op: "AddOutput", Err: err}
		}
		existing := decimal.Zero
		if totalOutput.Valid {
			existing = totalOutput.Decimal
		}
		if existing.Add(weight).GreaterThan(totalInput.Decimal) {
			return NewValidationError("output weight %s would exceed total input %s",
				existing.Add(weight).String(), totalInput.Decimal.String())
		}

		output = models.ProcessingOutput{
			SessionId:  sessionId,
			ProductId:  productId,
			OutputType: outputType,
			Weight:     weight,
		}
		if err := tx.Create(&output).Error; err != nil {
			return &StorageError{Op: "AddOutput", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &output, nil
}

// DeleteSession restores every input's batch by the quantity that was used,
// then removes outputs, inputs and the session header. Restores are additive
// so debits that happened since the input was taken are preserved.
func (l *ProcessingLedger) DeleteSession(ctx context.Context, sessionId int) error {

	release, err := utils.StockLock(ctx, "session:"+strconv.Itoa(sessionId), processingModule, "DeleteSession")
	if err != nil {
		return err
	}
	defer release()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := sessionExistsTx(tx, sessionId); err != nil {
			return err
		}

		var inputs []models.ProcessingInput
		if err := tx.Where("session_id = ?", sessionId).Find(&inputs).Error; err != nil {
			return &StorageError{Op: "DeleteSession", Err: err}
		}
		for _, input := range inputs {
			if err := AdjustQuantityTx(tx, input.BatchId, input.QuantityUsed); err != nil {
				return err
			}
		}

		if err := tx.Where("session_id = ?", sessionId).Delete(&models.ProcessingOutput{}).Error; err != nil {
			return &StorageError{Op: "DeleteSession", Err: err}
		}
		if err := tx.Where("session_id = ?", sessionId).Delete(&models.ProcessingInput{}).Error; err != nil {
			return &StorageError{Op: "DeleteSession", Err: err}
		}
		if err := tx.Delete(&models.ProcessingSession{}, sessionId).Error; err != nil {
			return &StorageError{Op: "DeleteSession", Err: err}
		}
		return nil
	})
}

func sessionExistsTx(tx *gorm.DB, sessionId int) error {
	var count int64
	if err := tx.Model(&models.ProcessingSession{}).
		Where("id = ?", sessionId).Count(&count).Error; err != nil {
		return &StorageError{Op: "sessionExistsTx", Err: err}
	}
	if count <= 0 {
		return &NotFoundError{Resource: "processing session", Id: sessionId}
	}
	return nil
}
