package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidPayload  = errors.New("invalid event payload")
	ErrUnknownEvent    = errors.New("unknown event type")
)
