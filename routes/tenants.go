package routes

import (
	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupTenantRoutes настраивает маршруты для управления арендаторами
func SetupTenantRoutes(app *fiber.App, db *gorm.DB, tenantController *controllers.TenantController) {
	// Группа маршрутов для арендаторов (только super_admin)
	tenants := app.Group("/tenants", utils.AuthMiddleware(db), utils.RequireRole(models.SuperAdminOnly...))

	// POST /tenants - создать арендатора вместе с администратором
	tenants.Post("/", tenantController.CreateTenant)

	// GET /tenants - список арендаторов
	tenants.Get("/", tenantController.GetTenants)

	// PUT /tenants/:id - редактировать арендатора, включая деактивацию
	tenants.Put("/:id", tenantController.UpdateTenant)
}
