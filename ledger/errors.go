package ledger

import (
	"fmt"

	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a debit would take a batch below
// zero, or when a plan cannot cover the requested quantity at all. Plan-level
// shortfalls carry the product instead of a batch.
type InsufficientStockError struct {
	BatchId   int
	ProductId int
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.BatchId == 0 {
		return fmt.Sprintf("insufficient stock for product %d: available %s, requested %s",
			e.ProductId, e.Available.String(), e.Requested.String())
	}
	return fmt.Sprintf("insufficient stock in batch %d: available %s, requested %s",
		e.BatchId, e.Available.String(), e.Requested.String())
}

// ValidationError is returned for malformed or out-of-state input. The type
// lives in utils so the model layer can raise it too.
type ValidationError = utils.ValidationError

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return utils.NewValidationError(format, args...)
}

// DependencyConflictError is returned when a delete is blocked by references.
type DependencyConflictError struct {
	Resource string
	Message  string
}

func (e *DependencyConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	Id       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.Id)
}

// StorageError wraps unexpected database failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
