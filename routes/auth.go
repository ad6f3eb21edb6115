package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupAuthRoutes настраивает маршруты для аутентификации
func SetupAuthRoutes(app *fiber.App, db *gorm.DB, authController *controllers.AuthController) {
	// Группа маршрутов для аутентификации
	auth := app.Group("/auth")

	// POST /auth/login - вход пользователя в рамках арендатора
	auth.Post("/login", authController.Login)

	// POST /auth/refresh - обновление access токена по refresh токену
	auth.Post("/refresh", authController.Refresh)

	// GET /auth/me - текущий пользователь (требует авторизации)
	auth.Get("/me", utils.AuthMiddleware(db), authController.Me)

	// GET /auth/health - проверка работоспособности
	auth.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Auth service is running",
		})
	})
}
