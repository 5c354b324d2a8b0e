package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoomKindRole   = "role"
	RoomKindDirect = "direct"
	RoomKindGroup  = "group"
)

type Room struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null"`
	Kind string    `gorm:"not null;check:kind IN ('role','direct','group')"`

	// PairKey — канонический ключ пары для direct-комнат (direct_<minID>_<maxID>).
	// Уникальный индекс гарантирует ровно одну комнату на пару даже при
	// одновременном создании с двух сторон. Для остальных видов — NULL.
	PairKey *string `gorm:"uniqueIndex"`

	// RoleID заполняется только для ролевых комнат
	RoleID    *uuid.UUID `gorm:"type:uuid"`
	CreatedBy uuid.UUID  `gorm:"type:uuid"`
	CreatedAt time.Time

	// Связи
	Members  []User    `gorm:"many2many:room_members"`
	Messages []Message `gorm:"foreignKey:RoomID"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasMember проверяет членство по предзагруженному списку участников
func (r *Room) HasMember(userID uuid.UUID) bool {
	for _, m := range r.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
