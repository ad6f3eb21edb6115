package controllers

import (
	"errors"

	"tagtrack-backend/services"

	"github.com/gofiber/fiber/v2"
)

// Машиночитаемые коды ошибок бизнес-логики
const (
	CodeValidationFailed  = "validation_failed"
	CodeLifecycleConflict = "lifecycle_conflict"
	CodeNotFound          = "not_found"
	CodeStoreUnavailable  = "store_unavailable"
)

// APIError структура ответа с ошибкой
type APIError struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(APIError{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// respondValidation возвращает 422 со списком всех нарушенных полей
func respondValidation(c *fiber.Ctx, errs *ValidationErrors) error {
	return c.Status(422).JSON(APIError{
		Success: false,
		Code:    CodeValidationFailed,
		Message: "Ошибка валидации запроса",
		Fields:  errs.Fields,
	})
}

// respondServiceError транслирует ошибки сервиса жизненного цикла в HTTP.
// Конфликт переходов сообщается отличимо от ошибок валидации, проигравший
// гонку запрос должен перечитать состояние и повторить явно.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return respondError(c, 404, CodeNotFound, "Предмет не найден")
	case errors.Is(err, services.ErrMaintenanceNotFound):
		return respondError(c, 404, CodeNotFound, "Запись обслуживания не найдена")
	case errors.Is(err, services.ErrLifecycleConflict):
		return respondError(c, 409, CodeLifecycleConflict, "Переход недопустим из текущего статуса предмета")
	default:
		return respondError(c, 503, CodeStoreUnavailable, "Хранилище временно недоступно")
	}
}
