package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
	"gorm.io/gorm"
)

// DirectPairKey строит канонический ключ пары: ID сортируются,
// поэтому (A,B) и (B,A) дают одно и то же имя
func DirectPairKey(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("direct_%s_%s", lo, hi)
}

// RoomSummary — комната в списке пользователя: отображаемое имя
// и последнее неудаленное сообщение (если есть)
type RoomSummary struct {
	Room        models.Room
	DisplayName string
	LastMessage *models.Message
}

func (d *Database) CreateRoom(room *models.Room) error {
	return d.db.Create(room).Error
}

func (d *Database) GetRoom(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := d.db.Preload("Members").First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) AddUserToRoom(userID, roomID uuid.UUID) error {
	var user models.User
	var room models.Room

	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := d.db.First(&room, "id = ?", roomID).Error; err != nil {
		return err
	}

	return d.db.Model(&room).Association("Members").Append(&user)
}

// CreateGroupRoom создает групповую комнату с создателем и участниками
func (d *Database) CreateGroupRoom(name string, creatorID uuid.UUID, memberIDs []uuid.UUID) (*models.Room, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyRoomName
	}

	room := &models.Room{
		Name:      name,
		Kind:      models.RoomKindGroup,
		CreatedBy: creatorID,
		CreatedAt: time.Now(),
	}

	if err := d.db.Create(room).Error; err != nil {
		return nil, err
	}

	if err := d.AddUserToRoom(creatorID, room.ID); err != nil {
		return nil, err
	}

	for _, memberID := range memberIDs {
		if memberID == creatorID {
			continue
		}
		// Неизвестные ID участников пропускаем молча
		if err := d.AddUserToRoom(memberID, room.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return d.GetRoom(room.ID)
}

// GetOrCreateDirectRoom возвращает direct-комнату пары, создавая ее при
// необходимости. Гонку двух одновременных создателей разрешает уникальный
// индекс по pair_key: проигравший получает ErrDuplicatedKey и перечитывает
// комнату победителя.
func (d *Database) GetOrCreateDirectRoom(userID, otherID uuid.UUID) (*models.Room, error) {
	if userID == otherID {
		return nil, ErrSelfDirectRoom
	}

	pairKey := DirectPairKey(userID, otherID)

	room, err := d.findDirectRoom(pairKey)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Room{
		Name:      pairKey,
		Kind:      models.RoomKindDirect,
		PairKey:   &pairKey,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	// Комната и оба участника появляются атомарно: неудавшееся добавление
	// участника откатывает и саму комнату, иначе pair_key остался бы
	// навсегда занят комнатой без собеседника
	err = d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(created).Error; err != nil {
			return err
		}

		for _, memberID := range []uuid.UUID{userID, otherID} {
			var user models.User
			if err := tx.First(&user, "id = ?", memberID).Error; err != nil {
				return err
			}
			if err := tx.Model(created).Association("Members").Append(&user); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return d.findDirectRoom(pairKey)
		}
		return nil, err
	}

	return d.GetRoom(created.ID)
}

func (d *Database) findDirectRoom(pairKey string) (*models.Room, error) {
	var room models.Room
	if err := d.db.Preload("Members").First(&room, "pair_key = ?", pairKey).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// ListUserRooms возвращает комнаты пользователя: сначала с самыми свежими
// сообщениями, комнаты без сообщений в конце. Для direct-комнат вместо
// служебного имени подставляется имя собеседника.
func (d *Database) ListUserRooms(userID uuid.UUID) ([]RoomSummary, error) {
	var user models.User
	err := d.db.Preload("Rooms.Members").First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(user.Rooms))
	for _, room := range user.Rooms {
		summary := RoomSummary{Room: room, DisplayName: room.Name}

		if room.Kind == models.RoomKindDirect {
			for _, m := range room.Members {
				if m.ID != userID {
					if m.FullName != "" {
						summary.DisplayName = m.FullName
					} else {
						summary.DisplayName = m.Email
					}
					break
				}
			}
		}

		last, err := d.LastRoomMessage(room.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		summary.LastMessage = last

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return summaries, nil
}

// MemberRoomIDs — ID всех комнат, где пользователь состоит явно
// (direct и group); используется для переподписки при реконнекте
func (d *Database) MemberRoomIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := d.db.Model(&models.Room{}).
		Joins("JOIN room_members rm ON rm.room_id = rooms.id").
		Where("rm.user_id = ?", userID).
		Pluck("rooms.id", &ids).Error

	return ids, err
}
