package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID uuid.UUID `gorm:"type:uuid;not null"`

	// Body пуст, если сообщение — только вложение
	Body string

	// IsRead — true после того, как любой участник, кроме автора,
	// отметил комнату прочитанной
	IsRead bool `gorm:"not null;default:false"`

	// IsDeleted — логическое удаление, запись остается в хранилище
	IsDeleted bool `gorm:"not null;default:false"`

	// Reactions — JSON-карта emoji -> список ID пользователей
	Reactions datatypes.JSON

	// Описание вложения (заполняется путем загрузки файлов)
	FileURL  string
	FileType string // image | pdf | document
	FileName string
	FileSize int64

	CreatedAt time.Time
	EditedAt  *time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
	Room Room `gorm:"foreignKey:RoomID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.Reactions) == 0 {
		m.Reactions = datatypes.JSON([]byte("{}"))
	}
	return nil
}

// ReactionMap десериализует карту реакций; пустая карта для новых сообщений
func (m *Message) ReactionMap() (map[string][]uuid.UUID, error) {
	reactions := make(map[string][]uuid.UUID)
	if len(m.Reactions) == 0 {
		return reactions, nil
	}
	if err := json.Unmarshal(m.Reactions, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}
