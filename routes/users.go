package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupUserRoutes настраивает маршруты для управления пользователями
func SetupUserRoutes(app *fiber.App, db *gorm.DB, userController *controllers.UserController) {
	// Группа маршрутов для пользователей (только администраторы)
	users := app.Group("/users", utils.AuthMiddleware(db), utils.RequireRole(models.AdminRoles...))

	// POST /users - создать пользователя в рамках арендатора
	users.Post("/", userController.CreateUser)

	// GET /users - список пользователей арендатора
	users.Get("/", userController.GetUsers)

	// PUT /users/:id - редактировать пользователя, включая деактивацию
	users.Put("/:id", userController.UpdateUser)
}
