package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName     string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	ProfileImage string
	IsActive     bool `gorm:"default:true"`
	CreatedAt    time.Time

	// Связи
	Roles []Role `gorm:"many2many:user_roles"`
	Rooms []Room `gorm:"many2many:room_members"`
}

// BeforeCreate генерирует UUID на стороне приложения,
// чтобы не зависеть от gen_random_uuid() конкретной СУБД
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
