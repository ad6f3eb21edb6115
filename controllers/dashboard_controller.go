package controllers

import (
	"time"

	"tagtrack-backend/models"
	"tagtrack-backend/services"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DashboardController контроллер для сводки по арендатору
type DashboardController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
}

// NewDashboardController создает новый экземпляр DashboardController
func NewDashboardController(db *gorm.DB, lifecycle *services.LifecycleService) *DashboardController {
	return &DashboardController{DB: db, Lifecycle: lifecycle}
}

// GetDashboardData получает сводку по предметам арендатора
func (dc *DashboardController) GetDashboardData(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	// Лениво помечаем просроченные выдачи перед подсчетом
	dc.Lifecycle.MarkOverdueAssignments(tenantID)

	// Количество предметов по статусам
	var itemStats struct {
		Total       int64 `json:"total"`
		Available   int64 `json:"available"`
		Assigned    int64 `json:"assigned"`
		Maintenance int64 `json:"maintenance"`
		Retired     int64 `json:"retired"`
	}

	dc.DB.Model(&models.Item{}).Where("tenant_id = ?", tenantID).Count(&itemStats.Total)
	dc.DB.Model(&models.Item{}).Where("tenant_id = ? AND status = ?", tenantID, models.ItemStatusAvailable).Count(&itemStats.Available)
	dc.DB.Model(&models.Item{}).Where("tenant_id = ? AND status = ?", tenantID, models.ItemStatusAssigned).Count(&itemStats.Assigned)
	dc.DB.Model(&models.Item{}).Where("tenant_id = ? AND status = ?", tenantID, models.ItemStatusMaintenance).Count(&itemStats.Maintenance)
	dc.DB.Model(&models.Item{}).Where("tenant_id = ? AND status = ?", tenantID, models.ItemStatusRetired).Count(&itemStats.Retired)

	// Статистика выдач
	var assignmentStats struct {
		Active  int64 `json:"active"`
		Overdue int64 `json:"overdue"`
	}

	dc.DB.Model(&models.Assignment{}).Where("tenant_id = ? AND status = ?", tenantID, models.AssignmentStatusActive).Count(&assignmentStats.Active)
	dc.DB.Model(&models.Assignment{}).Where("tenant_id = ? AND status = ?", tenantID, models.AssignmentStatusOverdue).Count(&assignmentStats.Overdue)

	// Предстоящее обслуживание (следующие 7 дней)
	var upcomingMaintenance []models.MaintenanceRecord
	now := time.Now()
	weekFromNow := now.AddDate(0, 0, 7)
	dc.DB.Preload("Item").
		Where("tenant_id = ? AND status = ? AND scheduled_date > ? AND scheduled_date <= ?",
			tenantID, models.MaintenanceStatusScheduled, now, weekFromNow).
		Order("scheduled_date ASC").
		Limit(10).
		Find(&upcomingMaintenance)

	// Количество открытых работ по обслуживанию
	var openMaintenance int64
	dc.DB.Model(&models.MaintenanceRecord{}).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]string{models.MaintenanceStatusScheduled, models.MaintenanceStatusInProgress}).
		Count(&openMaintenance)

	// Последние действия над предметами
	var recentActions []models.ActionLog
	dc.DB.Where("tenant_id = ?", tenantID).
		Order("timestamp DESC").
		Limit(10).
		Find(&recentActions)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":                itemStats,
			"assignments":          assignmentStats,
			"open_maintenance":     openMaintenance,
			"upcoming_maintenance": upcomingMaintenance,
			"recent_actions":       recentActions,
		},
	})
}
