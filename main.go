package main

import (
	"log"
	"os"
	"time"

	"tagtrack-backend/controllers"
	"tagtrack-backend/models"
	"tagtrack-backend/routes"
	"tagtrack-backend/services"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func main() {
	// Инициализация базы данных
	db, err := models.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Автомиграция
	db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.Item{}, &models.Assignment{}, &models.MaintenanceRecord{}, &models.ActionLog{})

	// Инициализация арендатора по умолчанию
	initDefaultTenant(db)

	// Создание Fiber приложения
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	// CORS настройки
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Инициализация сервисов
	lifecycleService := services.NewLifecycleService(db)
	hub := services.NewHub(db)
	go hub.Run()

	// Инициализация контроллеров
	authController := controllers.NewAuthController(db)
	tenantController := controllers.NewTenantController(db)
	userController := controllers.NewUserController(db)
	itemController := controllers.NewItemController(db, lifecycleService, hub)
	assignmentController := controllers.NewAssignmentController(db, lifecycleService, hub)
	maintenanceController := controllers.NewMaintenanceController(db, lifecycleService, hub)
	dashboardController := controllers.NewDashboardController(db, lifecycleService)

	// Настройка маршрутов
	routes.SetupAuthRoutes(app, db, authController)
	routes.SetupTenantRoutes(app, db, tenantController)
	routes.SetupUserRoutes(app, db, userController)
	routes.SetupItemRoutes(app, db, itemController)
	routes.SetupAssignmentRoutes(app, db, assignmentController)
	routes.SetupMaintenanceRoutes(app, db, maintenanceController)
	routes.SetupDashboardRoutes(app, db, dashboardController)

	// WebSocket маршрут для уведомлений о переходах предметов
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.HandleWebSocket(c)
	}))

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "TagTrack Backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	// Запуск сервера
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

// initDefaultTenant создает арендатора по умолчанию с супер-администратором,
// если в базе еще нет ни одного арендатора
func initDefaultTenant(db *gorm.DB) {
	var count int64
	db.Model(&models.Tenant{}).Count(&count)

	if count > 0 {
		log.Printf("Арендаторы уже существуют (%d)", count)
		return
	}

	log.Println("Инициализация арендатора по умолчанию...")

	adminPassword := os.Getenv("DEFAULT_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Printf("Ошибка при хэшировании пароля: %v", err)
		return
	}

	tenant := models.Tenant{
		Name:         "Default Tenant",
		Subdomain:    "default",
		ContactEmail: "admin@tagtrack.local",
		IsActive:     true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		admin := models.User{
			TenantID:     tenant.ID,
			Email:        "admin@tagtrack.local",
			PasswordHash: hashedPassword,
			FirstName:    "Super",
			LastName:     "Admin",
			Role:         models.RoleSuperAdmin,
			IsActive:     true,
		}
		return tx.Create(&admin).Error
	})

	if err != nil {
		log.Printf("Ошибка при создании арендатора по умолчанию: %v", err)
	} else {
		log.Println("Арендатор по умолчанию создан")
	}
}
