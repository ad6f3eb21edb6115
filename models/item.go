package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы жизненного цикла предмета
const (
	ItemStatusAvailable   = "available"
	ItemStatusAssigned    = "assigned"
	ItemStatusMaintenance = "maintenance"
	ItemStatusRetired     = "retired"
)

// itemTransitions описывает допустимые переходы статусов.
// Статус меняется только через LifecycleService, напрямую писать нельзя.
var itemTransitions = map[string][]string{
	ItemStatusAvailable:   {ItemStatusAssigned, ItemStatusMaintenance, ItemStatusRetired},
	ItemStatusAssigned:    {ItemStatusAvailable, ItemStatusMaintenance, ItemStatusRetired},
	ItemStatusMaintenance: {ItemStatusAvailable, ItemStatusAssigned, ItemStatusRetired},
	ItemStatusRetired:     {},
}

// CanTransition проверяет допустимость перехода статуса предмета
func CanTransition(from, to string) bool {
	for _, s := range itemTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Item представляет отслеживаемый предмет (актив) арендатора
type Item struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	TenantID          uint      `json:"tenant_id" gorm:"not null;index"`
	NFCTag            *string   `json:"nfc_tag" gorm:"uniqueIndex;size:50"` // NFC метка, опциональна
	Name              string    `json:"name" gorm:"not null;size:255"`
	Category          string    `json:"category" gorm:"size:100"`
	SerialNumber      string    `json:"serial_number" gorm:"size:100"`
	Status            string    `json:"status" gorm:"not null;default:'available'"` // 'available', 'assigned', 'maintenance', 'retired'
	CurrentAssignedTo *uint     `json:"current_assigned_to"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Связи
	Assignments        []Assignment        `json:"assignments,omitempty" gorm:"foreignKey:ItemID"`
	MaintenanceRecords []MaintenanceRecord `json:"maintenance_records,omitempty" gorm:"foreignKey:ItemID"`
}

// BeforeCreate хук для установки времени создания
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	i.CreatedAt = time.Now()
	i.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (i *Item) BeforeUpdate(tx *gorm.DB) error {
	i.UpdatedAt = time.Now()
	return nil
}
