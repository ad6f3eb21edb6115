package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"tagtrack-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Машиночитаемые коды ошибок авторизации
const (
	CodeCredentialMissing = "credential_missing"
	CodeCredentialExpired = "credential_expired"
	CodeCredentialInvalid = "credential_invalid"
	CodePrincipalInactive = "principal_inactive"
	CodeInsufficientRole  = "insufficient_role"
)

// Claims представляет структуру JWT токена
type Claims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID uint   `json:"tenant_id"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	// Получаем секретный ключ из переменной окружения или используем дефолтный
	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		secretKey = "tagtrack-secret-key-change-in-production"
	}
	return []byte(secretKey)
}

func refreshSecret() []byte {
	// Для refresh токенов используется отдельный секрет
	secretKey := os.Getenv("JWT_REFRESH_SECRET")
	if secretKey == "" {
		secretKey = "tagtrack-refresh-secret-change-in-production"
	}
	return []byte(secretKey)
}

// GenerateJWT создает access токен для пользователя
func GenerateJWT(user *models.User) (string, error) {
	return generateToken(user, 24*time.Hour, jwtSecret())
}

// GenerateRefreshJWT создает refresh токен для пользователя
func GenerateRefreshJWT(user *models.User) (string, error) {
	return generateToken(user, 7*24*time.Hour, refreshSecret())
}

func generateToken(user *models.User, lifetime time.Duration, secret []byte) (string, error) {
	// Создаем claims
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	// Создаем и подписываем токен
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT проверяет и парсит access токен.
// Истекший токен возвращает jwt.ErrTokenExpired (проверяется через errors.Is),
// любая другая ошибка означает поврежденный токен или неверную подпись.
func ValidateJWT(tokenString string) (*Claims, error) {
	return validateToken(tokenString, jwtSecret())
}

// ValidateRefreshJWT проверяет и парсит refresh токен
func ValidateRefreshJWT(tokenString string) (*Claims, error) {
	return validateToken(tokenString, refreshSecret())
}

func validateToken(tokenString string, secret []byte) (*Claims, error) {
	// Парсим токен
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	// Проверяем валидность токена
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// AuthMiddleware возвращает middleware проверки JWT токена.
// Помимо подписи и срока действия перепроверяет в базе, что пользователь
// и его арендатор все еще активны: деактивация должна отнимать доступ
// до истечения токена, а не после.
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Получаем токен из заголовка Authorization
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"success": false,
				"code":    CodeCredentialMissing,
				"message": "Требуется заголовок Authorization",
			})
		}

		// Проверяем формат Bearer token
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(401).JSON(fiber.Map{
				"success": false,
				"code":    CodeCredentialMissing,
				"message": "Неверный формат заголовка Authorization",
			})
		}

		// Валидируем токен, различая истекший и поврежденный
		claims, err := ValidateJWT(tokenParts[1])
		if err != nil {
			code := CodeCredentialInvalid
			message := "Недействительный токен"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = CodeCredentialExpired
				message = "Срок действия токена истек"
			}
			return c.Status(401).JSON(fiber.Map{
				"success": false,
				"code":    code,
				"message": message,
			})
		}

		// Перепроверяем пользователя и арендатора в базе
		var user models.User
		if err := db.Preload("Tenant").First(&user, claims.UserID).Error; err != nil {
			return c.Status(401).JSON(fiber.Map{
				"success": false,
				"code":    CodePrincipalInactive,
				"message": "Пользователь не найден или деактивирован",
			})
		}

		if !user.IsActive || !user.Tenant.IsActive {
			return c.Status(401).JSON(fiber.Map{
				"success": false,
				"code":    CodePrincipalInactive,
				"message": "Пользователь или арендатор деактивирован",
			})
		}

		// Сохраняем информацию о пользователе в контексте.
		// tenant_id берется только из токена, никогда из тела запроса.
		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		c.Locals("user_role", user.Role)
		c.Locals("tenant_id", user.TenantID)

		return c.Next()
	}
}

// RequireRole возвращает middleware проверки роли пользователя.
// При отказе сообщает и требуемые роли, и фактическую.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)

		if !models.RoleAllowed(role, allowed) {
			return c.Status(403).JSON(fiber.Map{
				"success":        false,
				"code":           CodeInsufficientRole,
				"message":        "Недостаточно прав для выполнения операции",
				"required_roles": allowed,
				"actual_role":    role,
			})
		}

		return c.Next()
	}
}

// TenantIDFromContext возвращает ID арендатора, сохраненный AuthMiddleware
func TenantIDFromContext(c *fiber.Ctx) uint {
	tenantID, _ := c.Locals("tenant_id").(uint)
	return tenantID
}

// UserIDFromContext возвращает ID пользователя, сохраненный AuthMiddleware
func UserIDFromContext(c *fiber.Ctx) uint {
	userID, _ := c.Locals("user_id").(uint)
	return userID
}
