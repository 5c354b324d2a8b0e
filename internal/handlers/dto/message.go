package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
)

type UserInfo struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

// MessageResponse — полная запись сообщения для newMessage и истории
type MessageResponse struct {
	ID        uuid.UUID              `json:"id"`
	RoomID    uuid.UUID              `json:"roomId"`
	UserID    uuid.UUID              `json:"userId"`
	Message   string                 `json:"message"`
	IsRead    bool                   `json:"isRead"`
	IsDeleted bool                   `json:"isDeleted"`
	Reactions map[string][]uuid.UUID `json:"reactions"`
	FileURL   string                 `json:"fileUrl,omitempty"`
	FileType  string                 `json:"fileType,omitempty"`
	FileName  string                 `json:"fileName,omitempty"`
	FileSize  int64                  `json:"fileSize,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	EditedAt  *time.Time             `json:"editedAt,omitempty"`
	User      *UserInfo              `json:"user,omitempty"`
}

func NewUserInfo(user *models.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		ID:           user.ID,
		FullName:     user.FullName,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
	}
}

func NewMessageResponse(msg *models.Message, author *models.User) MessageResponse {
	reactions, err := msg.ReactionMap()
	if err != nil {
		reactions = map[string][]uuid.UUID{}
	}

	return MessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Message:   msg.Body,
		IsRead:    msg.IsRead,
		IsDeleted: msg.IsDeleted,
		Reactions: reactions,
		FileURL:   msg.FileURL,
		FileType:  msg.FileType,
		FileName:  msg.FileName,
		FileSize:  msg.FileSize,
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedAt,
		User:      NewUserInfo(author),
	}
}
