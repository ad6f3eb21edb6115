package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupAssignmentRoutes настраивает маршруты для выдачи и возврата предметов
func SetupAssignmentRoutes(app *fiber.App, db *gorm.DB, assignmentController *controllers.AssignmentController) {
	// Переходы жизненного цикла привязаны к предмету
	items := app.Group("/items", utils.AuthMiddleware(db))

	// POST /items/:id/assign - выдать предмет пользователю (оператор и выше)
	items.Post("/:id/assign", utils.RequireRole(models.OperatorRoles...), assignmentController.AssignItem)

	// POST /items/:id/checkout - взять предмет на себя (оператор и выше)
	items.Post("/:id/checkout", utils.RequireRole(models.OperatorRoles...), assignmentController.CheckOutItem)

	// POST /items/:id/checkin - вернуть предмет (оператор и выше)
	items.Post("/:id/checkin", utils.RequireRole(models.OperatorRoles...), assignmentController.CheckInItem)

	// Группа маршрутов для выдач
	assignments := app.Group("/assignments", utils.AuthMiddleware(db))

	// GET /assignments/health - проверка работоспособности
	assignments.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Assignments service is running",
		})
	})

	// GET /assignments - список выдач арендатора (любая роль)
	assignments.Get("/", utils.RequireRole(models.AllRoles...), assignmentController.GetAssignments)
}
