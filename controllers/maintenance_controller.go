package controllers

import (
	"strconv"
	"time"

	"tagtrack-backend/models"
	"tagtrack-backend/services"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MaintenanceController контроллер для обслуживания предметов
type MaintenanceController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
	Hub       *services.Hub
}

// NewMaintenanceController создает новый экземпляр MaintenanceController
func NewMaintenanceController(db *gorm.DB, lifecycle *services.LifecycleService, hub *services.Hub) *MaintenanceController {
	return &MaintenanceController{DB: db, Lifecycle: lifecycle, Hub: hub}
}

// CompleteMaintenanceRequest структура запроса завершения обслуживания
type CompleteMaintenanceRequest struct {
	Cost *float64 `json:"cost"`
}

// MaintenanceResponse структура ответа с записью обслуживания
type MaintenanceResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Record  *models.MaintenanceRecord `json:"record,omitempty"`
}

// MaintenanceListResponse структура ответа со списком записей обслуживания
type MaintenanceListResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Records []models.MaintenanceRecord `json:"records"`
}

// ScheduleMaintenance ставит предмет на обслуживание
func (mc *MaintenanceController) ScheduleMaintenance(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(MaintenanceResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var req MaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MaintenanceResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	validated, errs := ValidateMaintenanceRequest(req)
	if errs != nil {
		return respondValidation(c, errs)
	}

	// Исполнитель должен быть активным пользователем арендатора
	var performer models.User
	if err := mc.DB.Where("id = ? AND tenant_id = ? AND is_active = ?",
		validated.PerformedBy, tenantID, true).First(&performer).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Исполнитель не найден в рамках арендатора")
	}

	record, err := mc.Lifecycle.ScheduleMaintenance(tenantID, uint(itemID), userID, services.MaintenanceParams{
		PerformedBy:         validated.PerformedBy,
		Type:                validated.MaintenanceType,
		Priority:            validated.Priority,
		Description:         validated.Description,
		Cost:                validated.Cost,
		ScheduledDate:       validated.ScheduledDate,
		NextMaintenanceDate: validated.NextMaintenanceDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	mc.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:     uint(itemID),
		ActionType: models.ActionTypeMaintenanceScheduled,
		NewState:   models.ItemStatusMaintenance,
		UserID:     userID,
		Timestamp:  time.Now(),
	})

	return c.Status(201).JSON(MaintenanceResponse{
		Success: true,
		Message: "Предмет поставлен на обслуживание",
		Record:  record,
	})
}

// CompleteMaintenance завершает обслуживание
func (mc *MaintenanceController) CompleteMaintenance(c *fiber.Ctx) error {
	return mc.closeMaintenance(c, true)
}

// CancelMaintenance отменяет обслуживание
func (mc *MaintenanceController) CancelMaintenance(c *fiber.Ctx) error {
	return mc.closeMaintenance(c, false)
}

func (mc *MaintenanceController) closeMaintenance(c *fiber.Ctx, complete bool) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	recordID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(MaintenanceResponse{
			Success: false,
			Message: "Неверный ID записи обслуживания",
		})
	}

	var record *models.MaintenanceRecord
	if complete {
		var req CompleteMaintenanceRequest
		// Тело опционально: завершить можно и без указания стоимости
		c.BodyParser(&req)

		if req.Cost != nil && *req.Cost < 0 {
			return respondValidation(c, &ValidationErrors{Fields: map[string]string{
				"cost": "Стоимость не может быть отрицательной",
			}})
		}

		record, err = mc.Lifecycle.CompleteMaintenance(tenantID, uint(recordID), userID, req.Cost)
	} else {
		record, err = mc.Lifecycle.CancelMaintenance(tenantID, uint(recordID), userID)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	actionType := models.ActionTypeMaintenanceCompleted
	message := "Обслуживание завершено"
	if !complete {
		actionType = models.ActionTypeMaintenanceCancelled
		message = "Обслуживание отменено"
	}

	mc.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:        record.ItemID,
		ActionType:    actionType,
		PreviousState: models.ItemStatusMaintenance,
		UserID:        userID,
		Timestamp:     time.Now(),
	})

	return c.JSON(MaintenanceResponse{
		Success: true,
		Message: message,
		Record:  record,
	})
}

// GetMaintenanceRecords возвращает список записей обслуживания арендатора
func (mc *MaintenanceController) GetMaintenanceRecords(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	query := mc.DB.Preload("Item").Where("tenant_id = ?", tenantID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if itemID := c.Query("item_id"); itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}

	var records []models.MaintenanceRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return c.Status(500).JSON(MaintenanceListResponse{
			Success: false,
			Message: "Ошибка при загрузке записей обслуживания",
		})
	}

	return c.JSON(MaintenanceListResponse{
		Success: true,
		Message: "Список записей обслуживания",
		Records: records,
	})
}
