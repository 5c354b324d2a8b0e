package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// PresenceTracker считает активные соединения каждого пользователя.
// Пользователь онлайн, пока жив хотя бы один его сокет, поэтому простое
// множество ID здесь не годится: второй девайс не должен "разлогинивать"
// первый. Состояние живет только в процессе.
type PresenceTracker struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]int
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{connections: make(map[uuid.UUID]int)}
}

// MarkOnline увеличивает счетчик соединений.
// Возвращает true, если это первое соединение пользователя.
func (p *PresenceTracker) MarkOnline(userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connections[userID]++
	return p.connections[userID] == 1
}

// MarkOffline уменьшает счетчик.
// Возвращает true, если это было последнее соединение пользователя.
func (p *PresenceTracker) MarkOffline(userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.connections[userID]
	if !ok {
		return false
	}

	if n <= 1 {
		delete(p.connections, userID)
		return true
	}

	p.connections[userID] = n - 1
	return false
}

func (p *PresenceTracker) IsOnline(userID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connections[userID] > 0
}

// OnlineUsers возвращает всех пользователей с активными соединениями
func (p *PresenceTracker) OnlineUsers() []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(p.connections))
	for userID := range p.connections {
		users = append(users, userID)
	}
	return users
}
