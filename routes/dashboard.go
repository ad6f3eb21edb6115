package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupDashboardRoutes настраивает маршруты для сводки по арендатору
func SetupDashboardRoutes(app *fiber.App, db *gorm.DB, dashboardController *controllers.DashboardController) {
	// Группа маршрутов для дашборда (любая роль)
	dashboard := app.Group("/dashboard", utils.AuthMiddleware(db), utils.RequireRole(models.AllRoles...))

	// GET /dashboard - сводка по предметам арендатора
	dashboard.Get("/", dashboardController.GetDashboardData)
}
