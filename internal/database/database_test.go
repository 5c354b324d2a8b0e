package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDatabase поднимает in-memory sqlite. Пул ограничен одним
// соединением: приватная память живет, пока живо соединение, и
// конкурентные тесты не ловят database is locked.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	d := NewDatabase(db)
	require.NoError(t, d.Migrate())

	return d
}

func createTestUser(t *testing.T, d *Database, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, d.SaveUser(user))
	return user
}

func createTestGroupRoom(t *testing.T, d *Database, name string, creator *models.User, members ...*models.User) *models.Room {
	t.Helper()

	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	room, err := d.CreateGroupRoom(name, creator.ID, memberIDs)
	require.NoError(t, err)
	return room
}
