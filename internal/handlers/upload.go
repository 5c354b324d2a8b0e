package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers/dto"
	"github.com/stayverse/chatcore/internal/middleware"
	"github.com/stayverse/chatcore/internal/models"
	"github.com/stayverse/chatcore/internal/storage"
	ws "github.com/stayverse/chatcore/internal/websocket"
)

// Типы файлов, которые принимает чат
var allowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
	"text/plain",
}

// UploadHandler принимает вложения чата: файл уходит в хранилище,
// в комнате появляется сообщение-вложение без текста
type UploadHandler struct {
	db       *database.Database
	hub      *ws.Hub
	uploader storage.Uploader
	maxSize  int64
}

func NewUploadHandler(db *database.Database, hub *ws.Hub, uploader storage.Uploader, maxSize int64) *UploadHandler {
	return &UploadHandler{db: db, hub: hub, uploader: uploader, maxSize: maxSize}
}

func (h *UploadHandler) UploadChatFile(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	if fileHeader.Size > h.maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	// Тип определяем по содержимому, а не по расширению
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot detect file type"})
		return
	}

	if !isAllowedUpload(mtype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file type " + mtype.String() + " is not allowed"})
		return
	}

	if _, err := file.Seek(0, 0); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), file, fileHeader.Filename, userID)
	if err != nil {
		log.Printf("Upload failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "file upload failed"})
		return
	}

	message := &models.Message{
		RoomID:    roomID,
		UserID:    userID,
		FileURL:   url,
		FileType:  classifyUpload(mtype),
		FileName:  fileHeader.Filename,
		FileSize:  fileHeader.Size,
		CreatedAt: time.Now(),
	}

	if err := h.db.CreateMessage(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	author, err := h.db.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	response := dto.NewMessageResponse(message, author)

	if frame, err := ws.NewEnvelope(ws.EventNewMessage, userID, response); err == nil {
		h.hub.SendToRoom(roomID, frame)
	}

	c.JSON(http.StatusCreated, response)
}

func isAllowedUpload(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedUploadTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// classifyUpload сводит MIME к типу вложения: image | pdf | document
func classifyUpload(mtype *mimetype.MIME) string {
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		return "image"
	case mtype.Is("application/pdf"):
		return "pdf"
	default:
		return "document"
	}
}
