package models

import (
	"time"

	"gorm.io/gorm"
)

// Типы действий в журнале
const (
	ActionTypeAssigned             = "assigned"
	ActionTypeCheckedIn            = "checked_in"
	ActionTypeMaintenanceScheduled = "maintenance_scheduled"
	ActionTypeMaintenanceCompleted = "maintenance_completed"
	ActionTypeMaintenanceCancelled = "maintenance_cancelled"
	ActionTypeRetired              = "retired"
)

// ActionLog представляет запись журнала действий над предметом.
// Журнал только пополняется, записи никогда не изменяются и не удаляются.
type ActionLog struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TenantID      uint      `json:"tenant_id" gorm:"not null;index"`
	ItemID        uint      `json:"item_id" gorm:"not null;index"`
	ActionType    string    `json:"action_type" gorm:"not null;size:50"`
	UserID        uint      `json:"user_id" gorm:"not null"`
	Timestamp     time.Time `json:"timestamp"`
	PreviousState string    `json:"previous_state" gorm:"size:20"`
	NewState      string    `json:"new_state" gorm:"size:20"`
}

// BeforeCreate хук для установки времени записи
func (l *ActionLog) BeforeCreate(tx *gorm.DB) error {
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}
