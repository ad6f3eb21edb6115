package controllers

import (
	"strconv"
	"strings"
	"time"

	"tagtrack-backend/models"
	"tagtrack-backend/services"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ItemController контроллер для управления предметами
type ItemController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
	Hub       *services.Hub
}

// NewItemController создает новый экземпляр ItemController
func NewItemController(db *gorm.DB, lifecycle *services.LifecycleService, hub *services.Hub) *ItemController {
	return &ItemController{DB: db, Lifecycle: lifecycle, Hub: hub}
}

// ItemRequest структура запроса создания/редактирования предмета
type ItemRequest struct {
	NFCTag       string `json:"nfc_tag"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	SerialNumber string `json:"serial_number"`
}

// ItemResponse структура ответа с предметом
type ItemResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Item    *models.Item `json:"item,omitempty"`
}

// ItemsResponse структура ответа со списком предметов
type ItemsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Items   []models.Item `json:"items"`
	Total   int64         `json:"total"`
}

// CreateItem создает предмет в рамках арендатора
func (ic *ItemController) CreateItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := ic.validateItemRequest(&req); err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	item := models.Item{
		TenantID:     tenantID,
		Name:         req.Name,
		Category:     req.Category,
		SerialNumber: req.SerialNumber,
		Status:       models.ItemStatusAvailable,
	}

	if req.NFCTag != "" {
		tag := strings.TrimSpace(req.NFCTag)

		// NFC метка уникальна среди всех предметов
		var existing models.Item
		if err := ic.DB.Where("nfc_tag = ?", tag).First(&existing).Error; err == nil {
			return c.Status(409).JSON(ItemResponse{
				Success: false,
				Message: "Предмет с такой NFC меткой уже существует",
			})
		}
		item.NFCTag = &tag
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		return c.Status(500).JSON(ItemResponse{
			Success: false,
			Message: "Ошибка при создании предмета",
		})
	}

	return c.Status(201).JSON(ItemResponse{
		Success: true,
		Message: "Предмет успешно создан",
		Item:    &item,
	})
}

// GetItems возвращает список предметов арендатора
func (ic *ItemController) GetItems(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	query := ic.DB.Where("tenant_id = ?", tenantID)

	// Опциональный фильтр по статусу
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Model(&models.Item{}).Count(&total)

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var items []models.Item
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return c.Status(500).JSON(ItemsResponse{
			Success: false,
			Message: "Ошибка при загрузке предметов",
		})
	}

	return c.JSON(ItemsResponse{
		Success: true,
		Message: "Список предметов",
		Items:   items,
		Total:   total,
	})
}

// GetItem возвращает предмет по ID
func (ic *ItemController) GetItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var item models.Item
	if err := ic.DB.Where("id = ? AND tenant_id = ?", itemID, tenantID).First(&item).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Предмет не найден")
	}

	return c.JSON(ItemResponse{
		Success: true,
		Message: "Предмет",
		Item:    &item,
	})
}

// UpdateItem редактирует атрибуты предмета.
// Статус через этот маршрут не меняется: все переходы жизненного цикла
// выполняет только LifecycleService.
func (ic *ItemController) UpdateItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var item models.Item
	if err := ic.DB.Where("id = ? AND tenant_id = ?", itemID, tenantID).First(&item).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Предмет не найден")
	}

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := ic.validateItemRequest(&req); err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	item.Name = req.Name
	item.Category = req.Category
	item.SerialNumber = req.SerialNumber

	if req.NFCTag != "" {
		tag := strings.TrimSpace(req.NFCTag)

		var existing models.Item
		if err := ic.DB.Where("nfc_tag = ? AND id != ?", tag, item.ID).First(&existing).Error; err == nil {
			return c.Status(409).JSON(ItemResponse{
				Success: false,
				Message: "Предмет с такой NFC меткой уже существует",
			})
		}
		item.NFCTag = &tag
	} else {
		item.NFCTag = nil
	}

	if err := ic.DB.Save(&item).Error; err != nil {
		return c.Status(500).JSON(ItemResponse{
			Success: false,
			Message: "Ошибка при сохранении предмета",
		})
	}

	return c.JSON(ItemResponse{
		Success: true,
		Message: "Предмет обновлен",
		Item:    &item,
	})
}

// Lookup ищет предмет по NFC метке в рамках арендатора
func (ic *ItemController) Lookup(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	var req LookupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	validated, errs := ValidateLookupRequest(req)
	if errs != nil {
		return respondValidation(c, errs)
	}

	var item models.Item
	if err := ic.DB.Where("nfc_tag = ? AND tenant_id = ?", validated.TagUID, tenantID).First(&item).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Предмет с такой NFC меткой не найден")
	}

	return c.JSON(ItemResponse{
		Success: true,
		Message: "Предмет найден",
		Item:    &item,
	})
}

// HistoryResponse структура ответа с журналом действий
type HistoryResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	History []models.ActionLog `json:"history"`
}

// GetItemHistory возвращает журнал действий по предмету
func (ic *ItemController) GetItemHistory(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(HistoryResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var item models.Item
	if err := ic.DB.Where("id = ? AND tenant_id = ?", itemID, tenantID).First(&item).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Предмет не найден")
	}

	var history []models.ActionLog
	if err := ic.DB.Where("item_id = ? AND tenant_id = ?", item.ID, tenantID).
		Order("timestamp DESC").
		Find(&history).Error; err != nil {
		return c.Status(500).JSON(HistoryResponse{
			Success: false,
			Message: "Ошибка при загрузке журнала",
		})
	}

	return c.JSON(HistoryResponse{
		Success: true,
		Message: "Журнал действий",
		History: history,
	})
}

// RetireItem списывает предмет (только для администраторов).
// Списание терминально и необратимо.
func (ic *ItemController) RetireItem(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	userID := utils.UserIDFromContext(c)

	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(ItemResponse{
			Success: false,
			Message: "Неверный ID предмета",
		})
	}

	var before models.Item
	if err := ic.DB.Where("id = ? AND tenant_id = ?", itemID, tenantID).First(&before).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Предмет не найден")
	}

	item, err := ic.Lifecycle.Retire(tenantID, uint(itemID), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	ic.Hub.BroadcastItemUpdate(tenantID, services.ItemUpdatePayload{
		ItemID:        item.ID,
		ActionType:    models.ActionTypeRetired,
		PreviousState: before.Status,
		NewState:      models.ItemStatusRetired,
		UserID:        userID,
		Timestamp:     time.Now(),
	})

	return c.JSON(ItemResponse{
		Success: true,
		Message: "Предмет списан",
		Item:    item,
	})
}

// Вспомогательные методы валидации

func (ic *ItemController) validateItemRequest(req *ItemRequest) error {
	if req.Name == "" {
		return fiber.NewError(400, "Название обязательно")
	}
	if len(req.Name) > 255 {
		return fiber.NewError(400, "Название не должно превышать 255 символов")
	}
	if len(strings.TrimSpace(req.NFCTag)) > 50 {
		return fiber.NewError(400, "NFC метка не должна превышать 50 символов")
	}
	return nil
}
