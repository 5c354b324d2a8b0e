package database

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletedMessageBody — фиксированная заглушка вместо текста удаленного сообщения
const DeletedMessageBody = "🗑️ Message deleted"

var (
	ErrEmptyRoomName    = errors.New("room name is required")
	ErrSelfDirectRoom   = errors.New("cannot create chat with yourself")
	ErrNotMessageAuthor = errors.New("only the author can modify the message")
	ErrMessageDeleted   = errors.New("message is deleted")
	ErrEmptyMessageBody = errors.New("message body is required")
)

const reactionLockStripes = 64

type Database struct {
	db *gorm.DB

	// Переключение реакций сериализуем по ID сообщения,
	// иначе read-modify-write теряет одновременные обновления
	reactionLocks [reactionLockStripes]sync.Mutex
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) reactionLock(messageID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(messageID[:])
	return &d.reactionLocks[h.Sum32()%reactionLockStripes]
}
