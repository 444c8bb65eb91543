package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Batch struct {
	ID                int              `gorm:"primary_key" json:"id"`
	ProductId         int              `gorm:"index;not null" json:"product_id" binding:"required"`
	Product           *Product         `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	BatchNumber       string           `gorm:"size:100;not null;index" json:"batch_number" binding:"required"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	ArrivalDate       time.Time        `gorm:"not null" json:"arrival_date"`
	ExpirationDate    *time.Time       `json:"expiration_date"`
	StorageLocationId int              `gorm:"index" json:"storage_location_id"`
	StorageLocation   *StorageLocation `gorm:"foreignKey:StorageLocationId" json:"storage_location,omitempty"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Batch) TableName() string {
	return "inventory_batches"
}

type NewBatch struct {
	ProductId         int             `json:"product_id" binding:"required"`
	BatchNumber       string          `json:"batch_number" binding:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
	ArrivalDate       time.Time       `json:"arrival_date" binding:"required"`
	ExpirationDate    *time.Time      `json:"expiration_date"`
	StorageLocationId int             `json:"storage_location_id"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewBatch) validate(ctx context.Context, db *gorm.DB, id int) error {
	if input.Quantity.IsNegative() {
		return utils.NewValidationError("quantity cannot be negative")
	}
	if err := utils.ValidateResourceId[Product](ctx, db, input.ProductId); err != nil {
		return utils.NewValidationError("product %d not found", input.ProductId)
	}
	if input.StorageLocationId != 0 {
		if err := utils.ValidateResourceId[StorageLocation](ctx, db, input.StorageLocationId); err != nil {
			return utils.NewValidationError("storage location %d not found", input.StorageLocationId)
		}
	}
	return nil
}

func CreateBatch(ctx context.Context, db *gorm.DB, input *NewBatch) (*Batch, error) {

	if err := input.validate(ctx, db, 0); err != nil {
		return nil, err
	}

	batch := Batch{
		ProductId:         input.ProductId,
		BatchNumber:       input.BatchNumber,
		Quantity:          input.Quantity,
		ArrivalDate:       input.ArrivalDate,
		ExpirationDate:    input.ExpirationDate,
		StorageLocationId: input.StorageLocationId,
	}
	if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateBatch updates descriptive fields only. Quantity changes go through
// the stock commands so the running balance stays consistent.
func UpdateBatch(ctx context.Context, db *gorm.DB, id int, input *NewBatch) (*Batch, error) {

	batch, err := GetResource[Batch](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}

	batch.ProductId = input.ProductId
	batch.BatchNumber = input.BatchNumber
	batch.ArrivalDate = input.ArrivalDate
	batch.ExpirationDate = input.ExpirationDate
	batch.StorageLocationId = input.StorageLocationId
	if err := db.WithContext(ctx).Save(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func ListBatches(ctx context.Context, db *gorm.DB) ([]*Batch, error) {
	var batches []*Batch
	if err := db.WithContext(ctx).
		Preload("Product").Preload("StorageLocation").
		Order("arrival_date ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func ListExpiredBatches(ctx context.Context, db *gorm.DB, asOf time.Time) ([]*Batch, error) {
	var batches []*Batch
	if err := db.WithContext(ctx).
		Preload("Product").
		Where("expiration_date IS NOT NULL AND expiration_date < ? AND quantity > 0", asOf).
		Order("expiration_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func ListExpiringBatches(ctx context.Context, db *gorm.DB, asOf time.Time, withinDays int) ([]*Batch, error) {
	until := asOf.AddDate(0, 0, withinDays)
	var batches []*Batch
	if err := db.WithContext(ctx).
		Preload("Product").
		Where("expiration_date IS NOT NULL AND expiration_date >= ? AND expiration_date <= ? AND quantity > 0", asOf, until).
		Order("expiration_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func SearchBatches(ctx context.Context, db *gorm.DB, term string) ([]*Batch, error) {
	like := "%" + term + "%"
	var batches []*Batch
	if err := db.WithContext(ctx).
		Preload("Product").
		Joins("LEFT JOIN products ON products.id = inventory_batches.product_id").
		Where("inventory_batches.batch_number LIKE ? OR products.name LIKE ?", like, like).
		Order("inventory_batches.arrival_date ASC").
		Limit(50).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}
