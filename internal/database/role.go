package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
)

func (d *Database) CreateRole(name, description string) (*models.Role, error) {
	role := &models.Role{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := d.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

func (d *Database) AssignRole(userID, roleID uuid.UUID) error {
	var user models.User
	var role models.Role

	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := d.db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	return d.db.Model(&user).Association("Roles").Append(&role)
}

// CreateRoleRoom создает ролевой канал, привязанный к роли
func (d *Database) CreateRoleRoom(name string, roleID uuid.UUID) (*models.Room, error) {
	if name == "" {
		return nil, ErrEmptyRoomName
	}

	room := &models.Room{
		Name:      name,
		Kind:      models.RoomKindRole,
		RoleID:    &roleID,
		CreatedAt: time.Now(),
	}

	if err := d.db.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// RoleRoomIDsForUser — плоский список ролевых комнат по всем ролям
// пользователя, одним запросом вместо обхода вложенных связей
func (d *Database) RoleRoomIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := d.db.Model(&models.Room{}).
		Joins("JOIN user_roles ur ON ur.role_id = rooms.role_id").
		Where("rooms.kind = ? AND ur.user_id = ?", models.RoomKindRole, userID).
		Distinct().
		Pluck("rooms.id", &ids).Error

	return ids, err
}
