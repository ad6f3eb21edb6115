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

// AssignmentController контроллер для выдачи и возврата предметов
type AssignmentController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
	Hub       *services.Hub
}

// NewAssignmentController создает новый экземпляр AssignmentController
func NewAssignmentController(db *gorm.DB, lifecycle *services.LifecycleService, hub *services.Hub) *AssignmentController {
	return &AssignmentController{DB: db, Lifecycle: lifecycle, Hub: hub}
}

// AssignmentResponse структура ответа с выдачей
type AssignmentResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
}

// AssignmentsResponse структура ответа со списком выдач
type AssignmentsResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Assignments []models.Assignment `json:"assignments"`
}

// AssignItem выдает предмет пользователю: available -> assigned
func (asc *AssignmentController) AssignItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	validated, errs := ValidateAssignRequest(req)
	if errs != nil {
		return respondValidation(c, errs)
	}

	// Получатель и выдавший должны быть активными пользователями арендатора
	if err := asc.checkTenantUser(tenantID, validated.OperatorID); err != nil {
		return respondError(c, 404, CodeNotFound, "Получатель не найден в рамках арендатора")
	}
	if err := asc.checkTenantUser(tenantID, validated.AssignedBy); err != nil {
		return respondError(c, 404, CodeNotFound, "Выдавший не найден в рамках арендатора")
	}

	assignment, err := asc.Lifecycle.Assign(tenantID, uint(itemID), userID, services.AssignParams{
		AssignedTo:         validated.OperatorID,
		AssignedBy:         validated.AssignedBy,
		Notes:              validated.Notes,
		ExpectedReturnDate: validated.ExpectedReturnDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	asc.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:        uint(itemID),
		ActionType:    models.ActionTypeAssigned,
		PreviousState: models.ItemStatusAvailable,
		NewState:      models.ItemStatusAssigned,
		UserID:        userID,
		Timestamp:     time.Now(),
	})

	return c.Status(201).JSON(AssignmentResponse{
		Success:    true,
		Message:    "Предмет выдан",
		Assignment: assignment,
	})
}

// CheckOutItem выдает предмет оператору на себя (самостоятельная выдача)
func (asc *AssignmentController) CheckOutItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	validated, errs := ValidateCheckRequest(req)
	if errs != nil {
		return respondValidation(c, errs)
	}

	if err := asc.checkTenantUser(tenantID, validated.OperatorID); err != nil {
		return respondError(c, 404, CodeNotFound, "Оператор не найден в рамках арендатора")
	}

	assignment, err := asc.Lifecycle.Assign(tenantID, uint(itemID), userID, services.AssignParams{
		AssignedTo: validated.OperatorID,
		AssignedBy: userID,
		Notes:      validated.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	asc.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:        uint(itemID),
		ActionType:    models.ActionTypeAssigned,
		PreviousState: models.ItemStatusAvailable,
		NewState:      models.ItemStatusAssigned,
		UserID:        userID,
		Timestamp:     time.Now(),
	})

	return c.Status(201).JSON(AssignmentResponse{
		Success:    true,
		Message:    "Предмет взят в работу",
		Assignment: assignment,
	})
}

// CheckInItem принимает предмет обратно: assigned -> available
func (asc *AssignmentController) CheckInItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AssignmentResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	validated, errs := ValidateCheckRequest(req)
	if errs != nil {
		return respondValidation(c, errs)
	}

	assignment, err := asc.Lifecycle.CheckIn(tenantID, uint(itemID), userID, services.CheckInParams{
		Condition: validated.Condition,
		Location:  validated.Location,
		Notes:     validated.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	asc.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:        uint(itemID),
		ActionType:    models.ActionTypeCheckedIn,
		PreviousState: models.ItemStatusAssigned,
		NewState:      models.ItemStatusAvailable,
		UserID:        userID,
		Timestamp:     time.Now(),
	})

	return c.JSON(AssignmentResponse{
		Success:    true,
		Message:    "Предмет возвращен",
		Assignment: assignment,
	})
}

// GetAssignments возвращает список выдач арендатора
func (asc *AssignmentController) GetAssignments(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	// Лениво помечаем просроченные выдачи перед чтением
	if err := asc.Lifecycle.MarkOverdueAssignments(tenantID); err != nil {
		return c.Status(500).JSON(AssignmentsResponse{
			Success: false,
			Message: "Ошибка при обновлении просроченных выдач",
		})
	}

	query := asc.DB.Preload("Item").Preload("Assignee").Where("tenant_id = ?", tenantID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if itemID := c.Query("item_id"); itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}

	var assignments []models.Assignment
	if err := query.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return c.Status(500).JSON(AssignmentsResponse{
			Success: false,
			Message: "Ошибка при загрузке выдач",
		})
	}

	return c.JSON(AssignmentsResponse{
		Success:     true,
		Message:     "Список выдач",
		Assignments: assignments,
	})
}

// checkTenantUser проверяет, что пользователь существует, активен
// и принадлежит арендатору
func (asc *AssignmentController) checkTenantUser(tenantID, userID uint) error {
	var user models.User
	return asc.DB.Where("id = ? AND tenant_id = ? AND is_active = ?", userID, tenantID, true).First(&user).Error
}
