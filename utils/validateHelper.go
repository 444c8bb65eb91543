package utils

import (
	"context"

	"gorm.io/gorm"
)

// check if id exists, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, db, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, return RecordNotFound error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, db *gorm.DB, ids []ID) error {
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, db, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, db *gorm.DB, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if exceptId == nil {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return NewValidationError("duplicate %s %v", column, value)
	}
	return nil
}

// count records matching condition
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T

	var count int64
	dbCtx := db.WithContext(ctx).Model(&model).Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func UniqueSlice[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
