package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name" binding:"required"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewSupplier) validate(ctx context.Context, db *gorm.DB, id int) error {
	var exceptId interface{}
	if id != 0 {
		exceptId = id
	}
	if err := utils.ValidateUnique[Supplier](ctx, db, "name", input.Name, exceptId); err != nil {
		return err
	}
	return nil
}

func CreateSupplier(ctx context.Context, db *gorm.DB, input *NewSupplier) (*Supplier, error) {

	if err := input.validate(ctx, db, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, db *gorm.DB, id int, input *NewSupplier) (*Supplier, error) {

	supplier, err := GetResource[Supplier](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}

	supplier.Name = input.Name
	supplier.ContactPerson = input.ContactPerson
	supplier.Phone = input.Phone
	supplier.Email = input.Email
	supplier.Address = input.Address
	if err := db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}
