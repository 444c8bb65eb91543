package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Recall struct {
	ID                         int           `gorm:"primary_key" json:"id"`
	RecallNumber               string        `gorm:"size:50;not null;uniqueIndex" json:"recall_number"`
	Title                      string        `gorm:"size:255;not null" json:"title" binding:"required"`
	Reason                     string        `gorm:"type:text" json:"reason"`
	SeverityLevel              SeverityLevel `gorm:"size:20;not null;default:medium" json:"severity_level"`
	Status                     RecallStatus  `gorm:"size:20;not null;default:initiated;index" json:"status"`
	InitiatedBy                string        `gorm:"size:100" json:"initiated_by"`
	InitiatedDate              time.Time     `gorm:"not null" json:"initiated_date"`
	CompletedDate              *time.Time    `json:"completed_date"`
	CustomerNotificationSent   *bool         `gorm:"not null;default:false" json:"customer_notification_sent"`
	RegulatoryNotificationSent *bool         `gorm:"not null;default:false" json:"regulatory_notification_sent"`
	Notes                      string        `gorm:"type:text" json:"notes"`
	Batches                    []RecallBatch `gorm:"foreignKey:RecallId" json:"batches,omitempty"`
	CreatedAt                  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Recall) TableName() string {
	return "batch_recalls"
}

type RecallBatch struct {
	ID               int             `gorm:"primary_key" json:"id"`
	RecallId         int             `gorm:"not null;uniqueIndex:idx_recall_batch" json:"recall_id"`
	BatchId          int             `gorm:"not null;uniqueIndex:idx_recall_batch;index" json:"batch_id"`
	Batch            *Batch          `gorm:"foreignKey:BatchId" json:"batch,omitempty"`
	QuantityAffected decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_affected"`
	RecoveryStatus   RecoveryStatus  `gorm:"size:20;not null;default:pending" json:"recovery_status"`
	RecoveryDate     *time.Time      `json:"recovery_date"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRecall struct {
	RecallNumber  string        `json:"recall_number"`
	Title         string        `json:"title" binding:"required"`
	Reason        string        `json:"reason"`
	SeverityLevel SeverityLevel `json:"severity_level"`
	InitiatedBy   string        `json:"initiated_by"`
	Notes         string        `json:"notes"`
}

func ListRecalls(ctx context.Context, db *gorm.DB) ([]*Recall, error) {
	var recalls []*Recall
	if err := db.WithContext(ctx).
		Order("initiated_date DESC, id DESC").
		Find(&recalls).Error; err != nil {
		return nil, err
	}
	return recalls, nil
}
