package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers/dto"
	"github.com/stayverse/chatcore/internal/models"
	ws "github.com/stayverse/chatcore/internal/websocket"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

// ChatHandler — маршрутизатор клиентских событий чата. Каждое событие
// валидируется, изменяет хранилище и рассылается подписчикам комнаты.
// Ошибка обработки возвращается ack-кадром только отправителю; для
// остальных участников неудавшееся событие — no-op.
type ChatHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewChatHandler(db *database.Database, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{db: db, hub: hub}
}

func (h *ChatHandler) HandleEvent(client *ws.Client, env *ws.Envelope) error {
	switch env.Event {
	case ws.EventJoinRoom:
		return h.handleJoinRoom(client, env)

	case ws.EventSendMessage:
		return h.handleSendMessage(client, env)

	case ws.EventTyping:
		return h.handleTyping(client, env, ws.EventUserTyping)

	case ws.EventStopTyping:
		return h.handleTyping(client, env, ws.EventUserStoppedTyping)

	case ws.EventEditMessage:
		return h.handleEditMessage(client, env)

	case ws.EventDeleteMessage:
		return h.handleDeleteMessage(client, env)

	case ws.EventReactMessage:
		return h.handleReactMessage(client, env)

	case ws.EventMarkAsRead:
		return h.handleMarkAsRead(client, env)

	default:
		return ws.ErrUnknownEvent
	}
}

// handleJoinRoom подписывает соединение на рассылку комнаты.
// Членство не проверяется: любой аутентифицированный клиент может
// подписаться на любую комнату (см. DESIGN.md, открытый вопрос).
func (h *ChatHandler) handleJoinRoom(client *ws.Client, env *ws.Envelope) error {
	var payload ws.JoinRoomPayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	h.hub.JoinRoom(client, payload.RoomID)
	return nil
}

func (h *ChatHandler) handleSendMessage(client *ws.Client, env *ws.Envelope) error {
	var payload ws.SendMessagePayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	message := &models.Message{
		RoomID:    payload.RoomID,
		UserID:    client.UserID,
		Body:      payload.Message,
		CreatedAt: time.Now(),
	}

	if err := h.db.CreateMessage(message); err != nil {
		log.Printf("Failed to save message: %v", err)
		return err
	}

	author, err := h.db.GetUser(client.UserID)
	if err != nil {
		log.Printf("Failed to get message author: %v", err)
		return err
	}

	return h.broadcastToRoom(payload.RoomID, ws.EventNewMessage, client.UserID,
		dto.NewMessageResponse(message, author))
}

func (h *ChatHandler) handleTyping(client *ws.Client, env *ws.Envelope, event ws.EventType) error {
	var payload ws.TypingPayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	// Индикатор не персистится и не возвращается отправителю
	data, err := ws.NewEnvelope(event, client.UserID, map[string]uuid.UUID{"userId": client.UserID})
	if err != nil {
		return err
	}

	h.hub.SendToRoomExcept(payload.RoomID, data, client.ID)
	return nil
}

func (h *ChatHandler) handleEditMessage(client *ws.Client, env *ws.Envelope) error {
	var payload ws.EditMessagePayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	message, err := h.db.EditMessage(payload.MessageID, client.UserID, payload.NewMessage)
	if err != nil {
		return editDeleteOutcome(err)
	}

	return h.broadcastToRoom(message.RoomID, ws.EventMessageEdited, client.UserID,
		map[string]interface{}{
			"messageId":  message.ID,
			"newMessage": message.Body,
		})
}

func (h *ChatHandler) handleDeleteMessage(client *ws.Client, env *ws.Envelope) error {
	var payload ws.DeleteMessagePayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	message, err := h.db.SoftDeleteMessage(payload.MessageID, client.UserID)
	if err != nil {
		return editDeleteOutcome(err)
	}

	return h.broadcastToRoom(message.RoomID, ws.EventMessageDeleted, client.UserID,
		map[string]interface{}{
			"messageId": message.ID,
		})
}

func (h *ChatHandler) handleReactMessage(client *ws.Client, env *ws.Envelope) error {
	var payload ws.ReactMessagePayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	message, err := h.db.GetMessage(payload.MessageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	reactions, err := h.db.ToggleReaction(payload.MessageID, client.UserID, payload.Emoji)
	if err != nil {
		return err
	}

	return h.broadcastToRoom(message.RoomID, ws.EventMessageReactionUpdated, client.UserID,
		map[string]interface{}{
			"messageId": message.ID,
			"reactions": reactions,
		})
}

func (h *ChatHandler) handleMarkAsRead(client *ws.Client, env *ws.Envelope) error {
	var payload ws.MarkAsReadPayload
	if err := ws.DecodePayload(env.Data, &payload); err != nil {
		return err
	}

	if err := h.db.MarkRoomMessagesRead(payload.RoomID, client.UserID); err != nil {
		return err
	}

	// Рассылается только факт прочтения, без перечня сообщений
	return h.broadcastToRoom(payload.RoomID, ws.EventMessagesRead, client.UserID,
		map[string]uuid.UUID{
			"roomId": payload.RoomID,
			"userId": client.UserID,
		})
}

func (h *ChatHandler) broadcastToRoom(roomID uuid.UUID, event ws.EventType, userID uuid.UUID, data interface{}) error {
	frame, err := ws.NewEnvelope(event, userID, data)
	if err != nil {
		return err
	}

	h.hub.SendToRoom(roomID, frame)
	return nil
}

// editDeleteOutcome переводит ошибки хранилища в ответ отправителю:
// чужое или несуществующее сообщение — отказ без эффекта для комнаты
func editDeleteOutcome(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	return err
}
