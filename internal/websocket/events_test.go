package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadSendMessage(t *testing.T) {
	roomID := uuid.New()
	raw := json.RawMessage(`{"roomId":"` + roomID.String() + `","message":"hello"}`)

	var payload SendMessagePayload
	require.NoError(t, DecodePayload(raw, &payload))
	assert.Equal(t, roomID, payload.RoomID)
	assert.Equal(t, "hello", payload.Message)
}

func TestDecodePayloadRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		dst  payload
	}{
		{"empty message", `{"roomId":"` + uuid.NewString() + `"}`, &SendMessagePayload{}},
		{"missing room", `{"message":"hi"}`, &SendMessagePayload{}},
		{"empty frame", ``, &SendMessagePayload{}},
		{"not json", `"joinRoom"`, &JoinRoomPayload{}},
		{"nil room", `{}`, &JoinRoomPayload{}},
		{"empty new text", `{"messageId":"` + uuid.NewString() + `","newMessage":""}`, &EditMessagePayload{}},
		{"missing message id", `{"newMessage":"text"}`, &EditMessagePayload{}},
		{"missing emoji", `{"messageId":"` + uuid.NewString() + `"}`, &ReactMessagePayload{}},
		{"missing room id", `{}`, &MarkAsReadPayload{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := DecodePayload(json.RawMessage(tc.raw), tc.dst)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestNewEnvelopeRoundTrip(t *testing.T) {
	userID := uuid.New()

	raw, err := NewEnvelope(EventMessagesRead, userID, map[string]string{"roomId": "r1"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EventMessagesRead, env.Event)
	assert.Equal(t, userID, env.UserID)
	assert.False(t, env.Timestamp.IsZero())
	assert.JSONEq(t, `{"roomId":"r1"}`, string(env.Data))
}
