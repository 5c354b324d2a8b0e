package database

import (
	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
)

func (d *Database) SaveUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AvailableUsers — активные пользователи, с которыми можно начать чат
func (d *Database) AvailableUsers(excludeID uuid.UUID) ([]models.User, error) {
	var users []models.User

	err := d.db.
		Where("id <> ? AND is_active = ?", excludeID, true).
		Limit(100).
		Find(&users).Error

	return users, err
}
