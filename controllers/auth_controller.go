package controllers

import (
	"regexp"
	"strings"
	"time"

	"tagtrack-backend/models"
	"tagtrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthController контроллер для аутентификации
type AuthController struct {
	DB *gorm.DB
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RefreshRequest структура запроса обновления токена
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserInfo краткая информация о пользователе в ответах
type UserInfo struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	TenantID  uint   `json:"tenant_id"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Token        string    `json:"token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         *UserInfo `json:"user,omitempty"`
}

// Login обрабатывает вход пользователя в рамках арендатора
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest

	// Парсим JSON
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	// Валидация
	if err := ac.validateLoginRequest(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	// Ищем арендатора по поддомену
	var tenant models.Tenant
	if err := ac.DB.Where("subdomain = ?", strings.ToLower(req.Subdomain)).First(&tenant).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Неверный email или пароль",
		})
	}

	// Ищем пользователя в рамках арендатора
	var user models.User
	if err := ac.DB.Where("tenant_id = ? AND email = ?", tenant.ID, strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Неверный email или пароль",
		})
	}

	// Проверяем пароль
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Неверный email или пароль",
		})
	}

	// Деактивированный пользователь или арендатор не может войти
	if !user.IsActive || !tenant.IsActive {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Аккаунт заблокирован",
		})
	}

	// Обновляем время последнего входа
	now := time.Now()
	ac.DB.Model(&user).Update("last_login", &now)

	// Генерируем пару токенов
	token, err := utils.GenerateJWT(&user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	refreshToken, err := utils.GenerateRefreshJWT(&user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	return c.JSON(AuthResponse{
		Success:      true,
		Message:      "Успешный вход в систему",
		Token:        token,
		RefreshToken: refreshToken,
		User:         userInfo(&user),
	})
}

// Refresh выдает новый access токен по refresh токену.
// Помимо подписи проверяется, что пользователь и арендатор все еще
// существуют и активны: при любой ошибке поиска доступ закрывается,
// устаревшим claims не доверяем.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest

	// Парсим JSON
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Неверный формат данных",
		})
	}

	if req.RefreshToken == "" {
		return c.Status(400).JSON(AuthResponse{
			Success: false,
			Message: "Refresh токен обязателен",
		})
	}

	// Валидируем refresh токен
	claims, err := utils.ValidateRefreshJWT(req.RefreshToken)
	if err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Недействительный refresh токен",
		})
	}

	// Перепроверяем пользователя и арендатора в базе
	var user models.User
	if err := ac.DB.Preload("Tenant").First(&user, claims.UserID).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Недействительный refresh токен",
		})
	}

	if !user.IsActive || !user.Tenant.IsActive {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Аккаунт заблокирован",
		})
	}

	token, err := utils.GenerateJWT(&user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Токен обновлен",
		Token:   token,
		User:    userInfo(&user),
	})
}

// Me возвращает текущего пользователя
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID := utils.UserIDFromContext(c)

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(AuthResponse{
			Success: false,
			Message: "Пользователь не найден",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Текущий пользователь",
		User:    userInfo(&user),
	})
}

// Вспомогательные методы

func userInfo(user *models.User) *UserInfo {
	return &UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		TenantID:  user.TenantID,
	}
}

func (ac *AuthController) validateLoginRequest(req *LoginRequest) error {
	if req.Subdomain == "" {
		return fiber.NewError(400, "Поддомен обязателен")
	}
	if !isValidEmail(req.Email) {
		return fiber.NewError(400, "Неверный формат email")
	}
	if req.Password == "" {
		return fiber.NewError(400, "Пароль обязателен")
	}
	return nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
