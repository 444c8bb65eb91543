package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Shipment struct {
	ID              int                   `gorm:"primary_key" json:"id"`
	ShipmentNumber  string                `gorm:"size:50;not null;uniqueIndex" json:"shipment_number"`
	DestinationName string                `gorm:"size:100;not null" json:"destination_name" binding:"required"`
	DestinationType string                `gorm:"size:50" json:"destination_type"`
	ScheduledDate   *time.Time            `json:"scheduled_date"`
	Status          ShipmentStatus        `gorm:"size:20;not null;default:planned;index" json:"status"`
	Notes           string                `gorm:"type:text" json:"notes"`
	CreatedBy       string                `gorm:"size:100" json:"created_by"`
	Lines           []ShipmentLine        `gorm:"foreignKey:ShipmentId" json:"lines,omitempty"`
	Restorations    []ShipmentRestoration `gorm:"foreignKey:ShipmentId" json:"restorations,omitempty"`
	CreatedAt       time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Shipment) TableName() string {
	return "outbound_shipments"
}

type ShipmentLine struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ShipmentId      int             `gorm:"index;not null" json:"shipment_id"`
	BatchId         int             `gorm:"index;not null" json:"batch_id"`
	Batch           *Batch          `gorm:"foreignKey:BatchId" json:"batch,omitempty"`
	QuantityShipped decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_shipped"`
	PickedStrategy  PickStrategy    `gorm:"size:10" json:"picked_strategy"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// ShipmentRestoration records what a cancellation credited back, so a
// later replan can re-debit the same batches.
type ShipmentRestoration struct {
	ID         int             `gorm:"primary_key" json:"id"`
	ShipmentId int             `gorm:"index;not null" json:"shipment_id"`
	BatchId    int             `gorm:"index;not null" json:"batch_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewShipment struct {
	ShipmentNumber  string     `json:"shipment_number"`
	DestinationName string     `json:"destination_name" binding:"required"`
	DestinationType string     `json:"destination_type"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	Notes           string     `json:"notes"`
	CreatedBy       string     `json:"created_by"`
}

func ListShipments(ctx context.Context, db *gorm.DB) ([]*Shipment, error) {
	var shipments []*Shipment
	if err := db.WithContext(ctx).
		Order("id DESC").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}
