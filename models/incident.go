package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Incident struct {
	ID             int             `gorm:"primary_key" json:"id"`
	IncidentNumber string          `gorm:"size:50;not null;uniqueIndex" json:"incident_number"`
	IncidentType   string          `gorm:"size:50;not null" json:"incident_type" binding:"required"`
	Title          string          `gorm:"size:255;not null" json:"title" binding:"required"`
	Description    string          `gorm:"type:text" json:"description"`
	SeverityLevel  SeverityLevel   `gorm:"size:20;not null;default:medium" json:"severity_level"`
	Status         IncidentStatus  `gorm:"size:20;not null;default:open;index" json:"status"`
	ReportedBy     string          `gorm:"size:100" json:"reported_by"`
	Batches        []IncidentBatch `gorm:"foreignKey:IncidentId" json:"batches,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Incident) TableName() string {
	return "food_safety_incidents"
}

type IncidentBatch struct {
	ID               int       `gorm:"primary_key" json:"id"`
	IncidentId       int       `gorm:"not null;uniqueIndex:idx_incident_batch" json:"incident_id"`
	BatchId          int       `gorm:"not null;uniqueIndex:idx_incident_batch;index" json:"batch_id"`
	Batch            *Batch    `gorm:"foreignKey:BatchId" json:"batch,omitempty"`
	InvolvementLevel string    `gorm:"size:50" json:"involvement_level"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewIncident struct {
	IncidentNumber string         `json:"incident_number"`
	IncidentType   string         `json:"incident_type" binding:"required"`
	Title          string         `json:"title" binding:"required"`
	Description    string         `json:"description"`
	SeverityLevel  SeverityLevel  `json:"severity_level"`
	Status         IncidentStatus `json:"status"`
	ReportedBy     string         `json:"reported_by"`
	BatchIds       []int          `json:"batch_ids"`
}

type NewIncidentBatch struct {
	BatchId          int    `json:"batch_id" binding:"required"`
	InvolvementLevel string `json:"involvement_level"`
	Notes            string `json:"notes"`
}

func ListIncidents(ctx context.Context, db *gorm.DB) ([]*Incident, error) {
	var incidents []*Incident
	if err := db.WithContext(ctx).
		Order("id DESC").
		Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}
