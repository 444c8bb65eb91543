package models

type PickStrategy string

const (
	PickStrategyFifo PickStrategy = "fifo"
	PickStrategyFefo PickStrategy = "fefo"
)

func (s PickStrategy) IsValid() bool {
	switch s {
	case PickStrategyFifo, PickStrategyFefo:
		return true
	}
	return false
}

type ShipmentStatus string

const (
	ShipmentStatusPlanned   ShipmentStatus = "planned"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPlanned, ShipmentStatusShipped, ShipmentStatusDelivered, ShipmentStatusCancelled:
		return true
	}
	return false
}

type RecallStatus string

const (
	RecallStatusInitiated  RecallStatus = "initiated"
	RecallStatusInProgress RecallStatus = "in_progress"
	RecallStatusCompleted  RecallStatus = "completed"
	RecallStatusCancelled  RecallStatus = "cancelled"
)

func (s RecallStatus) IsValid() bool {
	switch s {
	case RecallStatusInitiated, RecallStatusInProgress, RecallStatusCompleted, RecallStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the recall currently holds its debits.
// initiated and in_progress are interchangeable working states.
func (s RecallStatus) IsActive() bool {
	return s == RecallStatusInitiated || s == RecallStatusInProgress
}

type RecoveryStatus string

const (
	RecoveryStatusPending   RecoveryStatus = "pending"
	RecoveryStatusRecovered RecoveryStatus = "recovered"
	RecoveryStatusDisposed  RecoveryStatus = "disposed"
)

func (s RecoveryStatus) IsValid() bool {
	switch s {
	case RecoveryStatusPending, RecoveryStatusRecovered, RecoveryStatusDisposed:
		return true
	}
	return false
}

type SeverityLevel string

const (
	SeverityLevelLow      SeverityLevel = "low"
	SeverityLevelMedium   SeverityLevel = "medium"
	SeverityLevelHigh     SeverityLevel = "high"
	SeverityLevelCritical SeverityLevel = "critical"
)

func (s SeverityLevel) IsValid() bool {
	switch s {
	case SeverityLevelLow, SeverityLevelMedium, SeverityLevelHigh, SeverityLevelCritical:
		return true
	}
	return false
}

type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusInvestigating, IncidentStatusResolved, IncidentStatusClosed:
		return true
	}
	return false
}
