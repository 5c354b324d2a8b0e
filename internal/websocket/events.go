package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType определяет типы событий на проводе
type EventType string

const (
	// Системные типы
	EventPing EventType = "ping"
	EventPong EventType = "pong"

	// Клиент -> сервер
	EventJoinRoom      EventType = "joinRoom"
	EventSendMessage   EventType = "sendMessage"
	EventTyping        EventType = "typing"
	EventStopTyping    EventType = "stopTyping"
	EventEditMessage   EventType = "editMessage"
	EventDeleteMessage EventType = "deleteMessage"
	EventReactMessage  EventType = "reactMessage"
	EventMarkAsRead    EventType = "markAsRead"

	// Сервер -> клиент
	EventNewMessage             EventType = "newMessage"
	EventMessageEdited          EventType = "messageEdited"
	EventMessageDeleted         EventType = "messageDeleted"
	EventMessageReactionUpdated EventType = "messageReactionUpdated"
	EventMessagesRead           EventType = "messagesRead"
	EventUserTyping             EventType = "userTyping"
	EventUserStoppedTyping      EventType = "userStoppedTyping"
	EventUserOnline             EventType = "userOnline"
	EventUserOffline            EventType = "userOffline"
	EventError                  EventType = "error"
)

// Envelope — кадр протокола. Data содержит полезную нагрузку
// конкретного события, UserID проставляет сервер.
type Envelope struct {
	Event     EventType       `json:"event"`
	UserID    uuid.UUID       `json:"userId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Полезные нагрузки клиентских событий. Каждая валидируется до
// диспетчеризации: неполный кадр отклоняется сразу, а не проверками
// по месту в обработчиках.

type JoinRoomPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

type SendMessagePayload struct {
	RoomID  uuid.UUID `json:"roomId"`
	Message string    `json:"message"`
}

type TypingPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

type EditMessagePayload struct {
	MessageID  uuid.UUID `json:"messageId"`
	NewMessage string    `json:"newMessage"`
}

type DeleteMessagePayload struct {
	MessageID uuid.UUID `json:"messageId"`
}

type ReactMessagePayload struct {
	MessageID uuid.UUID `json:"messageId"`
	Emoji     string    `json:"emoji"`
}

type MarkAsReadPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

func (p *JoinRoomPayload) Validate() error {
	if p.RoomID == uuid.Nil {
		return ErrInvalidPayload
	}
	return nil
}

func (p *SendMessagePayload) Validate() error {
	if p.RoomID == uuid.Nil || p.Message == "" {
		return ErrInvalidPayload
	}
	return nil
}

func (p *TypingPayload) Validate() error {
	if p.RoomID == uuid.Nil {
		return ErrInvalidPayload
	}
	return nil
}

func (p *EditMessagePayload) Validate() error {
	if p.MessageID == uuid.Nil || p.NewMessage == "" {
		return ErrInvalidPayload
	}
	return nil
}

func (p *DeleteMessagePayload) Validate() error {
	if p.MessageID == uuid.Nil {
		return ErrInvalidPayload
	}
	return nil
}

func (p *ReactMessagePayload) Validate() error {
	if p.MessageID == uuid.Nil || p.Emoji == "" {
		return ErrInvalidPayload
	}
	return nil
}

func (p *MarkAsReadPayload) Validate() error {
	if p.RoomID == uuid.Nil {
		return ErrInvalidPayload
	}
	return nil
}

type payload interface {
	Validate() error
}

// DecodePayload разбирает и валидирует полезную нагрузку события
func DecodePayload(raw json.RawMessage, dst payload) error {
	if len(raw) == 0 {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidPayload
	}
	return dst.Validate()
}

// NewEnvelope собирает готовый к отправке кадр
func NewEnvelope(event EventType, userID uuid.UUID, data interface{}) ([]byte, error) {
	env := Envelope{
		Event:     event,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}

	return json.Marshal(env)
}
