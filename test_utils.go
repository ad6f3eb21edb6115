package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/routes"
	"tagtrack-backend/services"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB создает тестовую базу данных в памяти.
// Ограничиваем пул одним соединением: каждое новое соединение к :memory:
// открывало бы отдельную пустую базу.
func setupTestDB() *gorm.DB {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.Item{}, &models.Assignment{}, &models.MaintenanceRecord{}, &models.ActionLog{})
	return db
}

// setupTestApp создает приложение со всеми маршрутами поверх тестовой базы
func setupTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New()

	lifecycleService := services.NewLifecycleService(db)
	hub := services.NewHub(db)
	go hub.Run()

	authController := controllers.NewAuthController(db)
	tenantController := controllers.NewTenantController(db)
	userController := controllers.NewUserController(db)
	itemController := controllers.NewItemController(db, lifecycleService, hub)
	assignmentController := controllers.NewAssignmentController(db, lifecycleService, hub)
	maintenanceController := controllers.NewMaintenanceController(db, lifecycleService, hub)
	dashboardController := controllers.NewDashboardController(db, lifecycleService)

	routes.SetupAuthRoutes(app, db, authController)
	routes.SetupTenantRoutes(app, db, tenantController)
	routes.SetupUserRoutes(app, db, userController)
	routes.SetupItemRoutes(app, db, itemController)
	routes.SetupAssignmentRoutes(app, db, assignmentController)
	routes.SetupMaintenanceRoutes(app, db, maintenanceController)
	routes.SetupDashboardRoutes(app, db, dashboardController)

	return app
}

// createTestTenant создает тестового арендатора
func createTestTenant(db *gorm.DB, subdomain string) *models.Tenant {
	tenant := models.Tenant{
		Name:         "Tenant " + subdomain,
		Subdomain:    subdomain,
		ContactEmail: subdomain + "@test.com",
		IsActive:     true,
	}
	db.Create(&tenant)
	return &tenant
}

// createTestUser создает тестового пользователя с заданной ролью
func createTestUser(db *gorm.DB, tenantID uint, email, role string) *models.User {
	hash, _ := utils.HashPassword("password123")
	user := models.User{
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	db.Create(&user)
	return &user
}

// createTestItem создает тестовый предмет
func createTestItem(db *gorm.DB, tenantID uint, name, nfcTag string) *models.Item {
	item := models.Item{
		TenantID: tenantID,
		Name:     name,
		Category: "tools",
		Status:   models.ItemStatusAvailable,
	}
	if nfcTag != "" {
		item.NFCTag = &nfcTag
	}
	db.Create(&item)
	return &item
}

// tokenFor выдает access токен для пользователя
func tokenFor(user *models.User) string {
	token, _ := utils.GenerateJWT(user)
	return token
}

// jsonRequest создает JSON запрос с опциональным токеном авторизации
func jsonRequest(method, target string, body interface{}, token string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// decodeBody декодирует тело ответа в map
func decodeBody(resp *http.Response) map[string]interface{} {
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	return body
}
