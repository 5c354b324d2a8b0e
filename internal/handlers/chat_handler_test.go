package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers/dto"
	"github.com/stayverse/chatcore/internal/models"
	ws "github.com/stayverse/chatcore/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type chatFixture struct {
	db  *database.Database
	hub *ws.Hub
	h   *ChatHandler
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDatabase(gormDB)
	require.NoError(t, db.Migrate())

	hub := ws.NewHub()
	return &chatFixture{db: db, hub: hub, h: NewChatHandler(db, hub)}
}

func (f *chatFixture) newUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     name,
		Email:        name + "-" + uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.db.SaveUser(user))
	return user
}

// newClient создает подключенного клиента и подписывает его на комнату
func (f *chatFixture) newClient(user *models.User, rooms ...uuid.UUID) *ws.Client {
	client := ws.NewClient(f.hub, nil, user.ID)
	for _, roomID := range rooms {
		f.hub.JoinRoom(client, roomID)
	}
	return client
}

func (f *chatFixture) groupRoom(t *testing.T, name string, creator *models.User, members ...*models.User) *models.Room {
	t.Helper()

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	room, err := f.db.CreateGroupRoom(name, creator.ID, ids)
	require.NoError(t, err)
	return room
}

func event(t *testing.T, eventType ws.EventType, payload interface{}) *ws.Envelope {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &ws.Envelope{Event: eventType, Data: raw, Timestamp: time.Now()}
}

func receiveFrame(t *testing.T, c *ws.Client) *ws.Envelope {
	t.Helper()

	select {
	case raw := <-c.Send:
		var env ws.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return &env
	default:
		t.Fatal("expected frame in send queue")
		return nil
	}
}

func assertSilent(t *testing.T, clients ...*ws.Client) {
	t.Helper()

	for _, c := range clients {
		select {
		case raw := <-c.Send:
			t.Fatalf("unexpected frame: %s", raw)
		default:
		}
	}
}

func TestSendMessageBroadcastsToRoom(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	err := f.h.HandleEvent(aliceConn, event(t, ws.EventSendMessage, ws.SendMessagePayload{
		RoomID:  room.ID,
		Message: "hello",
	}))
	require.NoError(t, err)

	// Отправитель тоже получает newMessage
	for _, conn := range []*ws.Client{aliceConn, bobConn} {
		frame := receiveFrame(t, conn)
		assert.Equal(t, ws.EventNewMessage, frame.Event)

		var msg dto.MessageResponse
		require.NoError(t, json.Unmarshal(frame.Data, &msg))
		assert.Equal(t, "hello", msg.Message)
		assert.Equal(t, alice.ID, msg.UserID)
		assert.False(t, msg.IsRead)
		assert.False(t, msg.IsDeleted)
		assert.Empty(t, msg.Reactions)
		require.NotNil(t, msg.User)
		assert.Equal(t, "Alice", msg.User.FullName)
	}

	messages, err := f.db.GetRoomMessages(room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Body)
}

func TestSendMessageRejectsEmptyBody(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	room := f.groupRoom(t, "general", alice)
	conn := f.newClient(alice, room.ID)

	err := f.h.HandleEvent(conn, event(t, ws.EventSendMessage, ws.SendMessagePayload{RoomID: room.ID}))
	assert.ErrorIs(t, err, ws.ErrInvalidPayload)

	assertSilent(t, conn)
	messages, err := f.db.GetRoomMessages(room.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestJoinRoomSubscribes(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	room := f.groupRoom(t, "general", alice)
	conn := f.newClient(alice)

	require.False(t, conn.IsInRoom(room.ID))

	err := f.h.HandleEvent(conn, event(t, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: room.ID}))
	require.NoError(t, err)

	assert.True(t, conn.IsInRoom(room.ID))
	assertSilent(t, conn)
}

func TestTypingExcludesSender(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	err := f.h.HandleEvent(aliceConn, event(t, ws.EventTyping, ws.TypingPayload{RoomID: room.ID}))
	require.NoError(t, err)

	assertSilent(t, aliceConn)
	frame := receiveFrame(t, bobConn)
	assert.Equal(t, ws.EventUserTyping, frame.Event)
	assert.Equal(t, alice.ID, frame.UserID)

	err = f.h.HandleEvent(aliceConn, event(t, ws.EventStopTyping, ws.TypingPayload{RoomID: room.ID}))
	require.NoError(t, err)

	assertSilent(t, aliceConn)
	assert.Equal(t, ws.EventUserStoppedTyping, receiveFrame(t, bobConn).Event)
}

func TestEditMessageAuthorOnly(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	message := &models.Message{RoomID: room.ID, UserID: alice.ID, Body: "original", CreatedAt: time.Now()}
	require.NoError(t, f.db.CreateMessage(message))

	// Чужое сообщение: без эффекта и без рассылки в комнату
	err := f.h.HandleEvent(bobConn, event(t, ws.EventEditMessage, ws.EditMessagePayload{
		MessageID:  message.ID,
		NewMessage: "hijacked",
	}))
	assert.ErrorIs(t, err, database.ErrNotMessageAuthor)
	assertSilent(t, aliceConn, bobConn)

	stored, err := f.db.GetMessage(message.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Body)

	err = f.h.HandleEvent(aliceConn, event(t, ws.EventEditMessage, ws.EditMessagePayload{
		MessageID:  message.ID,
		NewMessage: "edited",
	}))
	require.NoError(t, err)

	for _, conn := range []*ws.Client{aliceConn, bobConn} {
		frame := receiveFrame(t, conn)
		assert.Equal(t, ws.EventMessageEdited, frame.Event)
		assert.JSONEq(t,
			`{"messageId":"`+message.ID.String()+`","newMessage":"edited"}`,
			string(frame.Data))
	}
}

func TestDeleteMessageSentinel(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	message := &models.Message{RoomID: room.ID, UserID: alice.ID, Body: "remove me", CreatedAt: time.Now()}
	require.NoError(t, f.db.CreateMessage(message))

	err := f.h.HandleEvent(bobConn, event(t, ws.EventDeleteMessage, ws.DeleteMessagePayload{MessageID: message.ID}))
	assert.ErrorIs(t, err, database.ErrNotMessageAuthor)
	assertSilent(t, aliceConn, bobConn)

	err = f.h.HandleEvent(aliceConn, event(t, ws.EventDeleteMessage, ws.DeleteMessagePayload{MessageID: message.ID}))
	require.NoError(t, err)

	assert.Equal(t, ws.EventMessageDeleted, receiveFrame(t, aliceConn).Event)
	assert.Equal(t, ws.EventMessageDeleted, receiveFrame(t, bobConn).Event)

	stored, err := f.db.GetMessage(message.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, database.DeletedMessageBody, stored.Body)
}

func TestDeleteMissingMessage(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	conn := f.newClient(alice)

	err := f.h.HandleEvent(conn, event(t, ws.EventDeleteMessage, ws.DeleteMessagePayload{MessageID: uuid.New()}))
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestReactMessageToggle(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	message := &models.Message{RoomID: room.ID, UserID: alice.ID, Body: "react", CreatedAt: time.Now()}
	require.NoError(t, f.db.CreateMessage(message))

	react := ws.ReactMessagePayload{MessageID: message.ID, Emoji: "👍"}

	require.NoError(t, f.h.HandleEvent(bobConn, event(t, ws.EventReactMessage, react)))

	// Рассылка несет полную карту реакций
	frame := receiveFrame(t, aliceConn)
	assert.Equal(t, ws.EventMessageReactionUpdated, frame.Event)
	var update struct {
		MessageID uuid.UUID              `json:"messageId"`
		Reactions map[string][]uuid.UUID `json:"reactions"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &update))
	assert.Equal(t, message.ID, update.MessageID)
	assert.Equal(t, []uuid.UUID{bob.ID}, update.Reactions["👍"])
	receiveFrame(t, bobConn)

	// Повторная реакция снимает ее
	require.NoError(t, f.h.HandleEvent(bobConn, event(t, ws.EventReactMessage, react)))
	frame = receiveFrame(t, aliceConn)
	// json.Unmarshal дописывает ключи в существующую карту, поэтому
	// перед повторным декодированием ее нужно сбросить
	update.Reactions = nil
	require.NoError(t, json.Unmarshal(frame.Data, &update))
	assert.Empty(t, update.Reactions)
	receiveFrame(t, bobConn)
}

func TestMarkAsReadScenario(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	bob := f.newUser(t, "Bob")
	room := f.groupRoom(t, "general", alice, bob)

	aliceConn := f.newClient(alice, room.ID)
	bobConn := f.newClient(bob, room.ID)

	require.NoError(t, f.h.HandleEvent(aliceConn, event(t, ws.EventSendMessage, ws.SendMessagePayload{
		RoomID:  room.ID,
		Message: "hello",
	})))
	require.NoError(t, f.h.HandleEvent(bobConn, event(t, ws.EventSendMessage, ws.SendMessagePayload{
		RoomID:  room.ID,
		Message: "hi back",
	})))
	drainClient(aliceConn)
	drainClient(bobConn)

	require.NoError(t, f.h.HandleEvent(bobConn, event(t, ws.EventMarkAsRead, ws.MarkAsReadPayload{RoomID: room.ID})))

	for _, conn := range []*ws.Client{aliceConn, bobConn} {
		frame := receiveFrame(t, conn)
		assert.Equal(t, ws.EventMessagesRead, frame.Event)
		assert.JSONEq(t,
			`{"roomId":"`+room.ID.String()+`","userId":"`+bob.ID.String()+`"}`,
			string(frame.Data))
	}

	messages, err := f.db.GetRoomMessages(room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, msg := range messages {
		if msg.UserID == bob.ID {
			assert.False(t, msg.IsRead, "reader's own messages stay unread")
		} else {
			assert.True(t, msg.IsRead)
		}
	}
}

func TestUnknownEventRejected(t *testing.T) {
	f := newChatFixture(t)
	alice := f.newUser(t, "Alice")
	conn := f.newClient(alice)

	err := f.h.HandleEvent(conn, &ws.Envelope{Event: "selfDestruct"})
	assert.ErrorIs(t, err, ws.ErrUnknownEvent)
}

func drainClient(c *ws.Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}
