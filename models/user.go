package models

import (
	"time"

	"gorm.io/gorm"
)

// Роли пользователей в порядке убывания привилегий
const (
	RoleSuperAdmin  = "super_admin"
	RoleTenantAdmin = "tenant_admin"
	RoleOperator    = "operator"
	RoleViewer      = "viewer"
)

// roleLevels задает порядок привилегий: чем больше значение, тем выше роль
var roleLevels = map[string]int{
	RoleSuperAdmin:  4,
	RoleTenantAdmin: 3,
	RoleOperator:    2,
	RoleViewer:      1,
}

// Канонические наборы ролей для проверки доступа
var (
	SuperAdminOnly = []string{RoleSuperAdmin}
	AdminRoles     = []string{RoleSuperAdmin, RoleTenantAdmin}
	OperatorRoles  = []string{RoleSuperAdmin, RoleTenantAdmin, RoleOperator}
	AllRoles       = []string{RoleSuperAdmin, RoleTenantAdmin, RoleOperator, RoleViewer}
)

// RoleLevel возвращает числовой уровень привилегий роли (0 для неизвестной)
func RoleLevel(role string) int {
	return roleLevels[role]
}

// IsValidRole проверяет, что роль входит в список известных
func IsValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// RoleAtLeast проверяет, что роль не ниже минимально требуемой
func RoleAtLeast(role, min string) bool {
	return RoleLevel(role) >= RoleLevel(min)
}

// RoleAllowed проверяет вхождение роли в набор разрешенных
func RoleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// User представляет пользователя, привязанного к арендатору
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	TenantID     uint       `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_tenant_email"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex:idx_tenant_email"`
	PasswordHash string     `json:"-" gorm:"not null"` // Скрываем хэш пароля в JSON
	FirstName    string     `json:"first_name" gorm:"size:100"`
	LastName     string     `json:"last_name" gorm:"size:100"`
	Role         string     `json:"role" gorm:"not null;default:'viewer'"` // 'super_admin', 'tenant_admin', 'operator', 'viewer'
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Связи
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

// BeforeCreate хук для установки времени создания
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
