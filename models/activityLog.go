package models

import (
	"context"
	"time"

	"github.com/freshtrace/freshtrace_backend/utils"
	"gorm.io/gorm"
)

type ActivityLog struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      int       `gorm:"index" json:"user_id"`
	UserName    string    `gorm:"size:100" json:"user_name"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	Description string    `gorm:"type:text" json:"description"`
	IpAddress   string    `gorm:"size:45" json:"ip_address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LogActivity records a mutation for the activity feed. Attribution comes
// from the request context when present.
func LogActivity(ctx context.Context, db *gorm.DB, action string, description string) error {

	record := ActivityLog{
		Action:      action,
		Description: description,
	}
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		record.UserId = userId
	}
	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		record.UserName = userName
	}
	if clientIp, ok := utils.GetClientIpFromContext(ctx); ok {
		record.IpAddress = clientIp
	}
	return db.WithContext(ctx).Create(&record).Error
}

func ListRecentActivity(ctx context.Context, db *gorm.DB, limit int) ([]*ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*ActivityLog
	if err := db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
