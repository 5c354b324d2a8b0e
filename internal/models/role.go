package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role — именованная группа возможностей. Роль владеет своими
// ролевыми комнатами: пользователь с ролью подключается к ним автоматически.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time

	// Связи
	Users []User `gorm:"many2many:user_roles"`
	Rooms []Room `gorm:"foreignKey:RoleID"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
