package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupMaintenanceRoutes настраивает маршруты для обслуживания предметов
func SetupMaintenanceRoutes(app *fiber.App, db *gorm.DB, maintenanceController *controllers.MaintenanceController) {
	// Постановка на обслуживание привязана к предмету
	items := app.Group("/items", utils.AuthMiddleware(db))

	// POST /items/:id/maintenance - поставить предмет на обслуживание (оператор и выше)
	items.Post("/:id/maintenance", utils.RequireRole(models.OperatorRoles...), maintenanceController.ScheduleMaintenance)

	// Группа маршрутов для записей обслуживания
	maintenance := app.Group("/maintenance", utils.AuthMiddleware(db))

	// GET /maintenance/health - проверка работоспособности
	maintenance.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Maintenance service is running",
		})
	})

	// GET /maintenance - список записей обслуживания (любая роль)
	maintenance.Get("/", utils.RequireRole(models.AllRoles...), maintenanceController.GetMaintenanceRecords)

	// PUT /maintenance/:id/complete - завершить обслуживание (только администраторы)
	maintenance.Put("/:id/complete", utils.RequireRole(models.AdminRoles...), maintenanceController.CompleteMaintenance)

	// PUT /maintenance/:id/cancel - отменить обслуживание (только администраторы)
	maintenance.Put("/:id/cancel", utils.RequireRole(models.AdminRoles...), maintenanceController.CancelMaintenance)
}
