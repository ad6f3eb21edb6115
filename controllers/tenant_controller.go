package controllers

import (
	"regexp"
	"strconv"
	"strings"

	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TenantController контроллер для управления арендаторами (только super_admin)
type TenantController struct {
	DB *gorm.DB
}

// NewTenantController создает новый экземпляр TenantController
func NewTenantController(db *gorm.DB) *TenantController {
	return &TenantController{DB: db}
}

// CreateTenantRequest структура запроса создания арендатора
type CreateTenantRequest struct {
	Name           string `json:"name"`
	Subdomain      string `json:"subdomain"`
	ContactEmail   string `json:"contact_email"`
	AdminEmail     string `json:"admin_email"`
	AdminPassword  string `json:"admin_password"`
	AdminFirstName string `json:"admin_first_name"`
	AdminLastName  string `json:"admin_last_name"`
}

// UpdateTenantRequest структура запроса редактирования арендатора
type UpdateTenantRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	IsActive     *bool   `json:"is_active"`
}

// TenantResponse структура ответа с арендатором
type TenantResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Tenant  *models.Tenant `json:"tenant,omitempty"`
	Admin   *models.User   `json:"admin,omitempty"`
}

// TenantsResponse структура ответа со списком арендаторов
type TenantsResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Tenants []models.Tenant `json:"tenants"`
}

// CreateTenant создает арендатора вместе с его первым администратором
func (tc *TenantController) CreateTenant(c *fiber.Ctx) error {
	var req CreateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(TenantResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := tc.validateCreateTenantRequest(&req); err != nil {
		return c.Status(400).JSON(TenantResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	subdomain := strings.ToLower(req.Subdomain)

	// Поддомен уникален среди всех арендаторов
	var existing models.Tenant
	if err := tc.DB.Where("subdomain = ?", subdomain).First(&existing).Error; err == nil {
		return c.Status(409).JSON(TenantResponse{
			Success: false,
			Message: "Арендатор с таким поддоменом уже существует",
		})
	}

	hashedPassword, err := utils.HashPassword(req.AdminPassword)
	if err != nil {
		return c.Status(500).JSON(TenantResponse{
			Success: false,
			Message: "Ошибка при создании арендатора",
		})
	}

	tenant := models.Tenant{
		Name:         req.Name,
		Subdomain:    subdomain,
		ContactEmail: strings.ToLower(req.ContactEmail),
		IsActive:     true,
	}
	admin := models.User{
		Email:        strings.ToLower(req.AdminEmail),
		PasswordHash: hashedPassword,
		FirstName:    req.AdminFirstName,
		LastName:     req.AdminLastName,
		Role:         models.RoleTenantAdmin,
		IsActive:     true,
	}

	// Арендатор и его администратор создаются атомарно
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		admin.TenantID = tenant.ID
		return tx.Create(&admin).Error
	})
	if err != nil {
		return c.Status(500).JSON(TenantResponse{
			Success: false,
			Message: "Ошибка при создании арендатора",
		})
	}

	return c.Status(201).JSON(TenantResponse{
		Success: true,
		Message: "Арендатор успешно создан",
		Tenant:  &tenant,
		Admin:   &admin,
	})
}

// GetTenants возвращает список всех арендаторов
func (tc *TenantController) GetTenants(c *fiber.Ctx) error {
	var tenants []models.Tenant
	if err := tc.DB.Order("created_at ASC").Find(&tenants).Error; err != nil {
		return c.Status(500).JSON(TenantsResponse{
			Success: false,
			Message: "Ошибка при загрузке арендаторов",
		})
	}

	return c.JSON(TenantsResponse{
		Success: true,
		Message: "Список арендаторов",
		Tenants: tenants,
	})
}

// UpdateTenant редактирует арендатора, включая деактивацию.
// Деактивация обесценивает сессии всех пользователей арендатора при
// следующей проверке токена, сами токены не отзываются.
func (tc *TenantController) UpdateTenant(c *fiber.Ctx) error {
	tenantID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(TenantResponse{
			Success: false,
			Message: "Неверный ID арендатора",
		})
	}

	var tenant models.Tenant
	if err := tc.DB.First(&tenant, tenantID).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Арендатор не найден")
	}

	var req UpdateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(TenantResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.ContactEmail != nil {
		if !isValidEmail(*req.ContactEmail) {
			return c.Status(400).JSON(TenantResponse{
				Success: false,
				Message: "Неверный формат email",
			})
		}
		tenant.ContactEmail = strings.ToLower(*req.ContactEmail)
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	if err := tc.DB.Save(&tenant).Error; err != nil {
		return c.Status(500).JSON(TenantResponse{
			Success: false,
			Message: "Ошибка при сохранении арендатора",
		})
	}

	return c.JSON(TenantResponse{
		Success: true,
		Message: "Арендатор обновлен",
		Tenant:  &tenant,
	})
}

// Вспомогательные методы валидации

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

func (tc *TenantController) validateCreateTenantRequest(req *CreateTenantRequest) error {
	if req.Name == "" {
		return fiber.NewError(400, "Название обязательно")
	}
	if !subdomainRegex.MatchString(strings.ToLower(req.Subdomain)) {
		return fiber.NewError(400, "Неверный формат поддомена")
	}
	if !isValidEmail(req.ContactEmail) {
		return fiber.NewError(400, "Неверный формат контактного email")
	}
	if !isValidEmail(req.AdminEmail) {
		return fiber.NewError(400, "Неверный формат email администратора")
	}
	if len(req.AdminPassword) < 6 {
		return fiber.NewError(400, "Пароль администратора должен содержать минимум 6 символов")
	}
	return nil
}
