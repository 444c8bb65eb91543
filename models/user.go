package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

// User is who acted, referenced by the activity log's user_id. Credentials
// are out of scope; the surrounding app authenticates.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

func CreateUser(ctx context.Context, db *gorm.DB, input *NewUser) (*User, error) {

	if err := utils.ValidateUnique[User](ctx, db, "username", input.Username, nil); err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Email:    input.Email,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
