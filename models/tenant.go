package models

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Tenant представляет организацию-арендатора в системе
type Tenant struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:255"`
	Subdomain    string    `json:"subdomain" gorm:"uniqueIndex;not null;size:63"`
	ContactEmail string    `json:"contact_email" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InitDB инициализирует подключение к базе данных
func InitDB() (*gorm.DB, error) {
	// Проверяем переменную окружения для выбора базы данных
	databaseURL := os.Getenv("DATABASE_URL")

	if databaseURL != "" {
		// Используем PostgreSQL для продакшена
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// Используем SQLite для разработки
	db, err := gorm.Open(sqlite.Open("tagtrack.db"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// BeforeCreate хук для установки времени создания
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (t *Tenant) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}
