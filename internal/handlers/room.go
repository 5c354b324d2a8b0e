package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers/dto"
	"github.com/stayverse/chatcore/internal/middleware"
	ws "github.com/stayverse/chatcore/internal/websocket"
	"gorm.io/gorm"
)

type RoomHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewRoomHandler(db *database.Database, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// GetMyRooms возвращает комнаты пользователя с последним сообщением
// и количеством подписчиков онлайн
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := middleware.CallerID(c)

	summaries, err := h.db.ListUserRooms(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	rooms := make([]dto.RoomResponse, 0, len(summaries))
	for i := range summaries {
		resp := dto.NewRoomSummaryResponse(&summaries[i])
		resp.OnlineCount = len(h.hub.RoomUsers(summaries[i].Room.ID))
		rooms = append(rooms, resp)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom создает групповую комнату
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := middleware.CallerID(c)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.db.CreateGroupRoom(req.Name, userID, req.MemberIDs)
	if err != nil {
		if errors.Is(err, database.ErrEmptyRoomName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewRoomResponse(room))
}

// CreateDirectRoom создает или возвращает direct-комнату с собеседником
func (h *RoomHandler) CreateDirectRoom(c *gin.Context) {
	userID := middleware.CallerID(c)

	var req dto.DirectRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.db.GetOrCreateDirectRoom(userID, req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrSelfDirectRoom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create direct room"})
		return
	}

	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// GetRoomMessages возвращает историю комнаты без удаленных сообщений
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	userID := middleware.CallerID(c)

	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if !room.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	messages, err := h.db.GetRoomMessages(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, dto.NewMessageResponse(&messages[i], &messages[i].User))
	}

	c.JSON(http.StatusOK, gin.H{"messages": result})
}

// GetAvailableUsers возвращает пользователей, с которыми можно начать чат
func (h *RoomHandler) GetAvailableUsers(c *gin.Context) {
	userID := middleware.CallerID(c)

	users, err := h.db.AvailableUsers(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get users"})
		return
	}

	result := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		result = append(result, *dto.NewUserInfo(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{"users": result})
}
