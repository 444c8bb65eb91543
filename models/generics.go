package models

import (
	"context"
	"errors"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

// fetch one record by id, preloading the given associations
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, db *gorm.DB, id int, associations ...string) (*T, error) {

	var result T
	dbCtx := db.WithContext(ctx)
	for _, association := range associations {
		dbCtx = dbCtx.Preload(association)
	}
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// list all records ordered as given
func ListResource[T any](ctx context.Context, db *gorm.DB, orders ...string) ([]*T, error) {

	var results []*T
	dbCtx := db.WithContext(ctx)
	for _, order := range orders {
		dbCtx = dbCtx.Order(order)
	}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// delete one record by id
func DeleteResource[T any](ctx context.Context, db *gorm.DB, id int) error {

	var model T
	result := db.WithContext(ctx).Delete(&model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected <= 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
