package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы выдачи предмета
const (
	AssignmentStatusActive   = "active"
	AssignmentStatusReturned = "returned"
	AssignmentStatusOverdue  = "overdue"
)

// Assignment представляет выдачу предмета пользователю
type Assignment struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	TenantID           uint       `json:"tenant_id" gorm:"not null;index"`
	ItemID             uint       `json:"item_id" gorm:"not null;index"`
	AssignedTo         uint       `json:"assigned_to" gorm:"not null"`
	AssignedBy         uint       `json:"assigned_by" gorm:"not null"`
	AssignedAt         time.Time  `json:"assigned_at"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date"`
	Status             string     `json:"status" gorm:"not null;default:'active'"` // 'active', 'returned', 'overdue'
	Notes              string     `json:"notes" gorm:"size:500"`
	ReturnCondition    string     `json:"return_condition" gorm:"size:20"` // 'excellent', 'good', 'fair', 'poor', 'damaged'
	ReturnLocation     string     `json:"return_location" gorm:"size:100"`
	ReturnNotes        string     `json:"return_notes" gorm:"size:500"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Связи
	Item     Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Assignee User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
}

// IsOpen возвращает true, если выдача не закрыта (активна или просрочена)
func (a *Assignment) IsOpen() bool {
	return a.Status == AssignmentStatusActive || a.Status == AssignmentStatusOverdue
}

// BeforeCreate хук для установки времени создания
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (a *Assignment) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}
