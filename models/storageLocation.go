package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

type StorageLocation struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Description  string    `gorm:"type:text" json:"description"`
	LocationType string    `gorm:"size:50" json:"location_type"`
	Capacity     string    `gorm:"size:100" json:"capacity"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStorageLocation struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	LocationType string `json:"location_type"`
	Capacity     string `json:"capacity"`
}

func (input *NewStorageLocation) validate(ctx context.Context, db *gorm.DB, id int) error {
	var exceptId interface{}
	if id != 0 {
		exceptId = id
	}
	if err := utils.ValidateUnique[StorageLocation](ctx, db, "name", input.Name, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateStorageLocation(ctx context.Context, db *gorm.DB, input *NewStorageLocation) (*StorageLocation, error) {

	if err := input.validate(ctx, db, 0); err != nil {
		return nil, err
	}

	location := StorageLocation{
		Name:         input.Name,
		Description:  input.Description,
		LocationType: input.LocationType,
		Capacity:     input.Capacity,
	}
	if err := db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func UpdateStorageLocation(ctx context.Context, db *gorm.DB, id int, input *NewStorageLocation) (*StorageLocation, error) {

	location, err := GetResource[StorageLocation](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}

	location.Name = input.Name
	location.Description = input.Description
	location.LocationType = input.LocationType
	location.Capacity = input.Capacity
	if err := db.WithContext(ctx).Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}
