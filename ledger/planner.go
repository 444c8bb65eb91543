package ledger

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocation is one batch's contribution to a picklist.
type Allocation struct {
	BatchId        int             `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	ArrivalDate    time.Time       `json:"arrival_date"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// Picklist is an advisory plan. Remaining > 0 means the product cannot
// cover the requested quantity right now.
type Picklist struct {
	Allocations []Allocation    `json:"allocations"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// AllocationPlanner produces picklists over a product's batches. It never
// writes; committing a plan is the shipment ledger's job.
type AllocationPlanner struct {
	db *gorm.DB
}

func NewAllocationPlanner(db *gorm.DB) *AllocationPlanner {
	return &AllocationPlanner{db: db}
}

func (p *AllocationPlanner) Pick(ctx context.Context, productId int, requiredQty decimal.Decimal, strategy models.PickStrategy) (*Picklist, error) {
	return pickTx(p.db.WithContext(ctx), productId, requiredQty, strategy)
}

// pickTx plans against the given handle so a shipment transaction can plan
// and debit under the same row locks.
func pickTx(tx *gorm.DB, productId int, requiredQty decimal.Decimal, strategy models.PickStrategy) (*Picklist, error) {

	if !requiredQty.IsPositive() {
		return nil, NewValidationError("required quantity must be positive")
	}
	if !strategy.IsValid() {
		return nil, NewValidationError("unknown pick strategy %q", string(strategy))
	}

	candidates, err := loadCandidates(tx, productId, strategy)
	if err != nil {
		return nil, err
	}
	return allocate(candidates, requiredQty), nil
}

// loadCandidates returns the product's pickable batches in strategy order.
// fifo: oldest arrival first. fefo: soonest expiration first, batches with
// no expiration date last.
func loadCandidates(tx *gorm.DB, productId int, strategy models.PickStrategy) ([]*models.Batch, error) {

	dbCtx := tx.Where("product_id = ? AND quantity > 0", productId)
	switch strategy {
	case models.PickStrategyFefo:
		dbCtx = dbCtx.Order("(expiration_date IS NULL), expiration_date ASC, id ASC")
	default:
		dbCtx = dbCtx.Order("arrival_date ASC, id ASC")
	}

	var batches []*models.Batch
	if err := dbCtx.Find(&batches).Error; err != nil {
		return nil, &StorageError{Op: "loadCandidates", Err: err}
	}
	return batches, nil
}

// allocate greedily walks the ordered candidates, taking from each at most
// its current quantity until the requirement is filled.
func allocate(candidates []*models.Batch, requiredQty decimal.Decimal) *Picklist {

	plan := &Picklist{
		Allocations: []Allocation{},
		Remaining:   requiredQty,
	}
	for _, batch := range candidates {
		if !plan.Remaining.IsPositive() {
			break
		}
		take := batch.Quantity
		if take.GreaterThan(plan.Remaining) {
			take = plan.Remaining
		}
		if !take.IsPositive() {
			continue
		}
		plan.Allocations = append(plan.Allocations, Allocation{
			BatchId:        batch.ID,
			BatchNumber:    batch.BatchNumber,
			ArrivalDate:    batch.ArrivalDate,
			ExpirationDate: batch.ExpirationDate,
			Quantity:       take,
		})
		plan.Remaining = plan.Remaining.Sub(take)
	}
	return plan
}
