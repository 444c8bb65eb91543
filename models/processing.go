package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProcessingSession struct {
	ID          int                `gorm:"primary_key" json:"id"`
	SessionName string             `gorm:"size:100;not null" json:"session_name" binding:"required"`
	SessionDate time.Time          `gorm:"not null" json:"session_date"`
	Notes       string             `gorm:"type:text" json:"notes"`
	Inputs      []ProcessingInput  `gorm:"foreignKey:SessionId" json:"inputs,omitempty"`
	Outputs     []ProcessingOutput `gorm:"foreignKey:SessionId" json:"outputs,omitempty"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProcessingInput struct {
	ID           int             `gorm:"primary_key" json:"id"`
	SessionId    int             `gorm:"index;not null" json:"session_id"`
	BatchId      int             `gorm:"index;not null" json:"batch_id"`
	Batch        *Batch          `gorm:"foreignKey:BatchId" json:"batch,omitempty"`
	QuantityUsed decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_used"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ProcessingOutput struct {
	ID         int             `gorm:"primary_key" json:"id"`
	SessionId  int             `gorm:"index;not null" json:"session_id"`
	ProductId  int             `gorm:"index;not null" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	OutputType string          `gorm:"size:50" json:"output_type"`
	Weight     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"weight"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewProcessingSession struct {
	SessionName string    `json:"session_name" binding:"required"`
	SessionDate time.Time `json:"session_date" binding:"required"`
	Notes       string    `json:"notes"`
}

type NewProcessingInput struct {
	BatchId      int             `json:"batch_id" binding:"required"`
	QuantityUsed decimal.Decimal `json:"quantity_used" binding:"required"`
}

type NewProcessingOutput struct {
	ProductId  int             `json:"product_id" binding:"required"`
	OutputType string          `json:"output_type"`
	Weight     decimal.Decimal `json:"weight" binding:"required"`
}

func ListProcessingSessions(ctx context.Context, db *gorm.DB) ([]*ProcessingSession, error) {
	var sessions []*ProcessingSession
	if err := db.WithContext(ctx).
		Order("session_date DESC, id DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
