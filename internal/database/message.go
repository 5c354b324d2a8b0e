package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
	"gorm.io/datatypes"
)

func (d *Database) CreateMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := d.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// GetRoomMessages возвращает неудаленные сообщения комнаты,
// старые первыми, с информацией об авторе
func (d *Database) GetRoomMessages(roomID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at ASC").
		Preload("User").
		Find(&messages).Error

	return messages, err
}

// EditMessage заменяет текст сообщения. Разрешено только автору.
func (d *Database) EditMessage(id, authorID uuid.UUID, body string) (*models.Message, error) {
	message, err := d.GetMessage(id)
	if err != nil {
		return nil, err
	}

	if message.UserID != authorID {
		return nil, ErrNotMessageAuthor
	}

	// Удаленное сообщение хранит заглушку, редактировать ее нельзя
	if message.IsDeleted {
		return nil, ErrMessageDeleted
	}

	now := time.Now()
	message.Body = body
	message.EditedAt = &now

	if err := d.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"body": body, "edited_at": now}).Error; err != nil {
		return nil, err
	}

	return message, nil
}

// SoftDeleteMessage помечает сообщение удаленным и подставляет заглушку.
// Повторное удаление автором — no-op с тем же итоговым состоянием.
func (d *Database) SoftDeleteMessage(id, authorID uuid.UUID) (*models.Message, error) {
	message, err := d.GetMessage(id)
	if err != nil {
		return nil, err
	}

	if message.UserID != authorID {
		return nil, ErrNotMessageAuthor
	}

	message.IsDeleted = true
	message.Body = DeletedMessageBody

	err = d.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "body": DeletedMessageBody}).Error
	if err != nil {
		return nil, err
	}

	return message, nil
}

// ToggleReaction добавляет пользователя в reactions[emoji], если его там нет,
// иначе убирает; опустевший ключ emoji удаляется целиком.
// Возвращает обновленную карту реакций.
func (d *Database) ToggleReaction(messageID, userID uuid.UUID, emoji string) (map[string][]uuid.UUID, error) {
	mu := d.reactionLock(messageID)
	mu.Lock()
	defer mu.Unlock()

	message, err := d.GetMessage(messageID)
	if err != nil {
		return nil, err
	}

	reactions, err := message.ReactionMap()
	if err != nil {
		return nil, err
	}

	ids := reactions[emoji]
	idx := -1
	for i, id := range ids {
		if id == userID {
			idx = i
			break
		}
	}

	if idx == -1 {
		reactions[emoji] = append(ids, userID)
	} else {
		ids = append(ids[:idx], ids[idx+1:]...)
		if len(ids) == 0 {
			delete(reactions, emoji)
		} else {
			reactions[emoji] = ids
		}
	}

	raw, err := json.Marshal(reactions)
	if err != nil {
		return nil, err
	}

	err = d.db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("reactions", datatypes.JSON(raw)).Error
	if err != nil {
		return nil, err
	}

	return reactions, nil
}

// MarkRoomMessagesRead отмечает прочитанными все сообщения комнаты,
// кроме написанных самим читателем
func (d *Database) MarkRoomMessagesRead(roomID, readerID uuid.UUID) error {
	return d.db.Model(&models.Message{}).
		Where("room_id = ? AND user_id <> ?", roomID, readerID).
		Update("is_read", true).Error
}

// LastRoomMessage возвращает свежайшее неудаленное сообщение комнаты или nil
func (d *Database) LastRoomMessage(roomID uuid.UUID) (*models.Message, error) {
	var message models.Message

	err := d.db.
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at DESC").
		Preload("User").
		First(&message).Error
	if err != nil {
		return nil, err
	}

	return &message, nil
}
