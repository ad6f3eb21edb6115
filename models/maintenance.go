package models

import (
	"time"

	"gorm.io/gorm"
)

// Типы обслуживания
const (
	MaintenanceTypeRoutine     = "routine"
	MaintenanceTypeRepair      = "repair"
	MaintenanceTypeInspection  = "inspection"
	MaintenanceTypeCalibration = "calibration"
)

// Статусы записи обслуживания
const (
	MaintenanceStatusScheduled  = "scheduled"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusCompleted  = "completed"
	MaintenanceStatusCancelled  = "cancelled"
)

// MaintenanceRecord представляет запись об обслуживании предмета
type MaintenanceRecord struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	TenantID            uint       `json:"tenant_id" gorm:"not null;index"`
	ItemID              uint       `json:"item_id" gorm:"not null;index"`
	PerformedBy         uint       `json:"performed_by" gorm:"not null"`
	Type                string     `json:"type" gorm:"not null;size:20"`              // 'routine', 'repair', 'inspection', 'calibration'
	Priority            string     `json:"priority" gorm:"size:20;default:'medium'"`  // 'low', 'medium', 'high', 'critical'
	Status              string     `json:"status" gorm:"not null;default:'scheduled'"` // 'scheduled', 'in_progress', 'completed', 'cancelled'
	Description         string     `json:"description" gorm:"not null;size:1000"`
	Cost                *float64   `json:"cost"`
	ScheduledDate       *time.Time `json:"scheduled_date"`
	CompletedDate       *time.Time `json:"completed_date"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Связи
	Item Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

// IsOpen возвращает true, если запись обслуживания не завершена и не отменена
func (m *MaintenanceRecord) IsOpen() bool {
	return m.Status == MaintenanceStatusScheduled || m.Status == MaintenanceStatusInProgress
}

// BeforeCreate хук для установки времени создания
func (m *MaintenanceRecord) BeforeCreate(tx *gorm.DB) error {
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (m *MaintenanceRecord) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}
