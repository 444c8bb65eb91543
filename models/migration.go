package models

import (
	"log"

	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) {

	err := db.AutoMigrate(
		&Supplier{}, &Product{},
		&StorageLocation{}, &Batch{},
		&ProcessingSession{}, &ProcessingInput{}, &ProcessingOutput{},
		&Shipment{}, &ShipmentLine{}, &ShipmentRestoration{},
		&Recall{}, &RecallBatch{},
		&ReorderRule{},
		&Incident{}, &IncidentBatch{},
		&User{},
		&ActivityLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
