package controllers

import (
	"strconv"
	"strings"

	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController контроллер для управления пользователями арендатора
type UserController struct {
	DB *gorm.DB
}

// NewUserController создает новый экземпляр UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// CreateUserRequest структура запроса создания пользователя
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UpdateUserRequest структура запроса редактирования пользователя
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// UserResponse структура ответа с пользователем
type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

// UsersResponse структура ответа со списком пользователей
type UsersResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Users   []models.User `json:"users"`
}

// CreateUser создает пользователя в рамках арендатора.
// Создать пользователя с ролью выше собственной нельзя.
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	actorRole, _ := c.Locals("user_role").(string)

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(UserResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if err := uc.validateCreateUserRequest(&req); err != nil {
		return c.Status(400).JSON(UserResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	if models.RoleLevel(req.Role) > models.RoleLevel(actorRole) {
		return respondError(c, 403, utils.CodeInsufficientRole, "Нельзя создать пользователя с ролью выше собственной")
	}

	// Email уникален в рамках арендатора
	email := strings.ToLower(req.Email)
	var existing models.User
	if err := uc.DB.Where("tenant_id = ? AND email = ?", tenantID, email).First(&existing).Error; err == nil {
		return c.Status(409).JSON(UserResponse{
			Success: false,
			Message: "Пользователь с таким email уже существует",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(UserResponse{
			Success: false,
			Message: "Ошибка при создании пользователя",
		})
	}

	user := models.User{
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		return c.Status(500).JSON(UserResponse{
			Success: false,
			Message: "Ошибка при создании пользователя",
		})
	}

	return c.Status(201).JSON(UserResponse{
		Success: true,
		Message: "Пользователь успешно создан",
		User:    &user,
	})
}

// GetUsers возвращает список пользователей арендатора
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)

	query := uc.DB.Where("tenant_id = ?", tenantID)

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at ASC").Find(&users).Error; err != nil {
		return c.Status(500).JSON(UsersResponse{
			Success: false,
			Message: "Ошибка при загрузке пользователей",
		})
	}

	return c.JSON(UsersResponse{
		Success: true,
		Message: "Список пользователей",
		Users:   users,
	})
}

// UpdateUser редактирует пользователя арендатора, включая деактивацию.
// Деактивация отнимает доступ при следующем запросе, отзывать токены
// по отдельности не нужно.
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	tenantID := utils.TenantIDFromContext(c)
	actorID := utils.UserIDFromContext(c)
	actorRole, _ := c.Locals("user_role").(string)

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(UserResponse{
			Success: false,
			Message: "Неверный ID пользователя",
		})
	}

	var user models.User
	if err := uc.DB.Where("id = ? AND tenant_id = ?", userID, tenantID).First(&user).Error; err != nil {
		return respondError(c, 404, CodeNotFound, "Пользователь не найден")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(UserResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return c.Status(400).JSON(UserResponse{
				Success: false,
				Message: "Неизвестная роль",
			})
		}
		if user.ID == actorID {
			return c.Status(400).JSON(UserResponse{
				Success: false,
				Message: "Нельзя изменить собственную роль",
			})
		}
		if models.RoleLevel(*req.Role) > models.RoleLevel(actorRole) {
			return respondError(c, 403, utils.CodeInsufficientRole, "Нельзя назначить роль выше собственной")
		}
		user.Role = *req.Role
	}

	if req.IsActive != nil {
		if user.ID == actorID && !*req.IsActive {
			return c.Status(400).JSON(UserResponse{
				Success: false,
				Message: "Нельзя деактивировать собственный аккаунт",
			})
		}
		user.IsActive = *req.IsActive
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(UserResponse{
			Success: false,
			Message: "Ошибка при сохранении пользователя",
		})
	}

	return c.JSON(UserResponse{
		Success: true,
		Message: "Пользователь обновлен",
		User:    &user,
	})
}

// Вспомогательные методы валидации

func (uc *UserController) validateCreateUserRequest(req *CreateUserRequest) error {
	if !isValidEmail(req.Email) {
		return fiber.NewError(400, "Неверный формат email")
	}
	if len(req.Password) < 6 {
		return fiber.NewError(400, "Пароль должен содержать минимум 6 символов")
	}
	if !models.IsValidRole(req.Role) {
		return fiber.NewError(400, "Неизвестная роль")
	}
	return nil
}
