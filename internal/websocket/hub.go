package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub владеет всеми живыми соединениями и группами рассылки комнат.
// Регистрация, отписка и глобальные рассылки идут через каналы
// в единственной горутине Run.
type Hub struct {
	clients map[uuid.UUID]*Client

	// Соединения по UserID: один пользователь может держать
	// несколько соединений одновременно
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Подписчики комнат
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	presence *PresenceTracker

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		presence:    NewPresenceTracker(),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub и закрывает все соединения.
// Каналы Send здесь не трогаем: горутина чтения может еще держать кадр
// в обработке, и close приводил бы к панике на отправке в закрытый канал.
// Соединения закрываются, пампы выходят сами.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента.
// После Stop цикл Run уже не читает канал, поэтому выходим по ctx,
// а не виснем навсегда.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	log.Printf("Client registered: %s (User: %s)", client.ID, client.UserID)

	// userOnline уходит всем только при первом соединении пользователя
	if h.presence.MarkOnline(client.UserID) {
		h.notifyPresence(EventUserOnline, client.UserID)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for roomID := range client.Rooms {
		h.removeFromRoomUnsafe(client, roomID)
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("Client unregistered: %s (User: %s)", client.ID, client.UserID)

	// userOffline — только когда погасло последнее соединение
	if h.presence.MarkOffline(client.UserID) {
		h.notifyPresence(EventUserOffline, client.UserID)
	}
}

// JoinRoom подписывает клиента на рассылку комнаты.
// Подписка локальная, остальным участникам ничего не рассылается.
func (h *Hub) JoinRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}

	h.rooms[roomID][client.ID] = client
	client.mu.Lock()
	client.Rooms[roomID] = true
	client.mu.Unlock()
}

// LeaveRoom отписывает клиента от комнаты
func (h *Hub) LeaveRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID uuid.UUID) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := room[client.ID]; !ok {
		return
	}

	delete(room, client.ID)
	client.mu.Lock()
	delete(client.Rooms, roomID)
	client.mu.Unlock()

	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// SendToRoom отправляет кадр всем подписчикам комнаты, включая отправителя
func (h *Hub) SendToRoom(roomID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendToRoomUnsafe(roomID, message, uuid.Nil)
}

// SendToRoomExcept отправляет кадр всем в комнате, кроме одного клиента
// (typing-события не возвращаются отправителю)
func (h *Hub) SendToRoomExcept(roomID uuid.UUID, message []byte, excludeID uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendToRoomUnsafe(roomID, message, excludeID)
}

func (h *Hub) sendToRoomUnsafe(roomID uuid.UUID, message []byte, excludeID uuid.UUID) {
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID == excludeID {
				continue
			}
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// Broadcast отправляет кадр всем подключенным клиентам
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.broadcastUnsafe(message)
}

func (h *Hub) broadcastUnsafe(message []byte) {
	for _, client := range h.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

func (h *Hub) notifyPresence(event EventType, userID uuid.UUID) {
	data, err := NewEnvelope(event, userID, map[string]uuid.UUID{"userId": userID})
	if err != nil {
		return
	}
	h.broadcastUnsafe(data)
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := NewEnvelope(EventPing, uuid.Nil, nil)
	if err != nil {
		return
	}
	h.broadcastUnsafe(data)
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	return h.presence.IsOnline(userID)
}

// OnlineUsers возвращает список онлайн пользователей
func (h *Hub) OnlineUsers() []uuid.UUID {
	return h.presence.OnlineUsers()
}

// RoomUsers возвращает пользователей, подписанных на комнату сейчас
func (h *Hub) RoomUsers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
