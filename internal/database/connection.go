package database

import (
	"errors"

	"github.com/stayverse/chatcore/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	// TranslateError нужен, чтобы ловить нарушение уникального индекса
	// pair_key как gorm.ErrDuplicatedKey при гонке создания direct-комнат
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	d.db = db

	return d.Migrate()
}

func (d *Database) Migrate() error {
	return d.db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Room{},
		&models.Message{},
	)
}
