package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupItemRoutes настраивает маршруты для управления предметами
func SetupItemRoutes(app *fiber.App, db *gorm.DB, itemController *controllers.ItemController) {
	// Группа маршрутов для предметов (все требуют авторизации)
	items := app.Group("/items", utils.AuthMiddleware(db))

	// GET /items/health - проверка работоспособности (должен быть перед параметрическим маршрутом)
	items.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Items service is running",
		})
	})

	// POST /items - создать предмет (оператор и выше)
	items.Post("/", utils.RequireRole(models.OperatorRoles...), itemController.CreateItem)

	// GET /items - список предметов арендатора (любая роль)
	items.Get("/", utils.RequireRole(models.AllRoles...), itemController.GetItems)

	// POST /items/lookup - поиск предмета по NFC метке (любая роль)
	items.Post("/lookup", utils.RequireRole(models.AllRoles...), itemController.Lookup)

	// GET /items/:id - получить предмет (любая роль)
	items.Get("/:id", utils.RequireRole(models.AllRoles...), itemController.GetItem)

	// PUT /items/:id - редактировать атрибуты предмета (оператор и выше)
	items.Put("/:id", utils.RequireRole(models.OperatorRoles...), itemController.UpdateItem)

	// GET /items/:id/history - журнал действий по предмету (любая роль)
	items.Get("/:id/history", utils.RequireRole(models.AllRoles...), itemController.GetItemHistory)

	// POST /items/:id/retire - списать предмет (только администраторы)
	items.Post("/:id/retire", utils.RequireRole(models.AdminRoles...), itemController.RetireItem)
}
