package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

type Product struct {
	ID                  int       `gorm:"primary_key" json:"id"`
	Name                string    `gorm:"size:100;not null" json:"name" binding:"required"`
	AnimalType          string    `gorm:"size:50;not null" json:"animal_type" binding:"required"`
	CutType             string    `gorm:"size:100" json:"cut_type"`
	StorageRequirements string    `gorm:"size:255" json:"storage_requirements"`
	ShelfLifeDays       int       `gorm:"default:0" json:"shelf_life_days"`
	PackagingDetails    string    `gorm:"type:text" json:"packaging_details"`
	SupplierId          int       `gorm:"index" json:"supplier_id"`
	Supplier            *Supplier `gorm:"foreignKey:SupplierId" json:"supplier,omitempty"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name                string `json:"name" binding:"required"`
	AnimalType          string `json:"animal_type" binding:"required"`
	CutType             string `json:"cut_type"`
	StorageRequirements string `json:"storage_requirements"`
	ShelfLifeDays       int    `json:"shelf_life_days"`
	PackagingDetails    string `json:"packaging_details"`
	SupplierId          int    `json:"supplier_id"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, db *gorm.DB, id int) error {
	if input.SupplierId != 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, db, input.SupplierId); err != nil {
			return utils.NewValidationError("supplier %d not found", input.SupplierId)
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, db *gorm.DB, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, db, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:                input.Name,
		AnimalType:          input.AnimalType,
		CutType:             input.CutType,
		StorageRequirements: input.StorageRequirements,
		ShelfLifeDays:       input.ShelfLifeDays,
		PackagingDetails:    input.PackagingDetails,
		SupplierId:          input.SupplierId,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, db *gorm.DB, id int, input *NewProduct) (*Product, error) {

	product, err := GetResource[Product](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.AnimalType = input.AnimalType
	product.CutType = input.CutType
	product.StorageRequirements = input.StorageRequirements
	product.ShelfLifeDays = input.ShelfLifeDays
	product.PackagingDetails = input.PackagingDetails
	product.SupplierId = input.SupplierId
	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}
