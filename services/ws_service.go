package services

import (
	"log"
	"os"
	"sync"
	"time"

	"tagtrack-backend/models"

	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// WSMessage представляет сообщение WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ItemUpdatePayload представляет payload уведомления о переходе предмета
type ItemUpdatePayload struct {
	ItemID        uint      `json:"item_id"`
	ActionType    string    `json:"action_type"`
	PreviousState string    `json:"previous_state"`
	NewState      string    `json:"new_state"`
	UserID        uint      `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// Client представляет подключенного клиента
type Client struct {
	ID       uint
	UserID   uint
	TenantID uint
	Conn     *websocket.Conn
	Send     chan WSMessage
	Hub      *Hub
	LastPing time.Time
}

// Hub управляет всеми подключениями. Уведомления о переходах предметов
// рассылаются только клиентам того же арендатора.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	db         *gorm.DB
}

// NewHub создает новый хаб
func NewHub(db *gorm.DB) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		db:         db,
	}
}

// Run запускает хаб
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			log.Printf("Client %d (tenant %d) connected. Total clients: %d", client.UserID, client.TenantID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

			log.Printf("Client %d disconnected. Total clients: %d", client.UserID, len(h.clients))
		}
	}
}

// BroadcastItemUpdate рассылает уведомление о переходе предмета
// всем клиентам арендатора
func (h *Hub) BroadcastItemUpdate(tenantID uint, payload ItemUpdatePayload) {
	message := WSMessage{
		Type:    "item_update",
		Payload: payload,
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.clients {
		if client.TenantID != tenantID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// HandleWebSocket обрабатывает WebSocket соединение
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	// Получаем JWT токен из query параметров
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		secretKey = "tagtrack-secret-key-change-in-production"
	}

	// Парсим JWT токен
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})

	if err != nil || !token.Valid {
		c.Close()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.Close()
		return
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		c.Close()
		return
	}
	userID := uint(userIDFloat)

	// Перепроверяем пользователя и арендатора в базе: деактивированный
	// клиент не должен получать уведомления
	var user models.User
	if err := h.db.Preload("Tenant").First(&user, userID).Error; err != nil {
		c.Close()
		return
	}
	if !user.IsActive || !user.Tenant.IsActive {
		c.Close()
		return
	}

	// Создаем клиента
	client := &Client{
		ID:       uint(time.Now().UnixNano()),
		UserID:   user.ID,
		TenantID: user.TenantID,
		Conn:     c,
		Send:     make(chan WSMessage, 256),
		Hub:      h,
		LastPing: time.Now(),
	}

	// Регистрируем клиента
	h.register <- client

	// Запускаем горутину для записи, чтение держим в текущей
	go client.writePump()
	client.readPump()
}

// readPump читает сообщения из WebSocket
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		var message WSMessage
		err := c.Conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Клиенты только слушают; поддерживаем лишь ping
		if message.Type == "ping" {
			select {
			case c.Send <- WSMessage{Type: "pong"}:
			default:
			}
		}
	}
}

// writePump записывает сообщения в WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
