package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/middleware"
	ws "github.com/stayverse/chatcore/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub         *ws.Hub
	db          *database.Database
	chatHandler *ChatHandler
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler
func NewWebSocketHandler(hub *ws.Hub, db *database.Database, chatHandler *ChatHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		db:          db,
		chatHandler: chatHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: проверять origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket апгрейдит аутентифицированный запрос и подписывает
// соединение на все комнаты пользователя
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.CallerID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)
	h.autoJoinRooms(client)

	go client.WritePump()
	go client.ReadPump(h.chatHandler)
}

// autoJoinRooms подписывает новое соединение на ролевые каналы всех ролей
// пользователя и на комнаты, где он состоит явно, — так реконнект
// восстанавливает подписки без действий клиента
func (h *WebSocketHandler) autoJoinRooms(client *ws.Client) {
	roleRooms, err := h.db.RoleRoomIDsForUser(client.UserID)
	if err != nil {
		log.Printf("Failed to resolve role rooms for user %s: %v", client.UserID, err)
	}

	memberRooms, err := h.db.MemberRoomIDs(client.UserID)
	if err != nil {
		log.Printf("Failed to resolve member rooms for user %s: %v", client.UserID, err)
	}

	for _, roomID := range append(roleRooms, memberRooms...) {
		if !client.IsInRoom(roomID) {
			h.hub.JoinRoom(client, roomID)
		}
	}
}
