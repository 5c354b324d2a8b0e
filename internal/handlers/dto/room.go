package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/models"
)

type CreateRoomRequest struct {
	Name      string      `json:"name" binding:"required"`
	MemberIDs []uuid.UUID `json:"memberIds"`
}

type DirectRoomRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type RoomResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Kind        string           `json:"kind"`
	Members     []UserInfo       `json:"members,omitempty"`
	LastMessage *MessageResponse `json:"lastMessage,omitempty"`
	OnlineCount int              `json:"onlineCount"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func NewRoomResponse(room *models.Room) RoomResponse {
	members := make([]UserInfo, 0, len(room.Members))
	for i := range room.Members {
		members = append(members, *NewUserInfo(&room.Members[i]))
	}

	return RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		DisplayName: room.Name,
		Kind:        room.Kind,
		Members:     members,
		CreatedAt:   room.CreatedAt,
	}
}

func NewRoomSummaryResponse(summary *database.RoomSummary) RoomResponse {
	resp := NewRoomResponse(&summary.Room)
	resp.DisplayName = summary.DisplayName

	if summary.LastMessage != nil {
		last := NewMessageResponse(summary.LastMessage, &summary.LastMessage.User)
		resp.LastMessage = &last
	}

	return resp
}
