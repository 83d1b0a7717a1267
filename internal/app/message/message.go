/*
Package message defines the persisted chat record and the store contract the broker
appends to and the history endpoint reads from.
*/
package message

//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../../mocks/mock_message_store.go -package=mocks

import (
	"context"
	"time"
)

// Message is an immutable chat record. Timestamp is assigned by the store.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"clubId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a durable, per-room, time-ordered message log.
type Store interface {
	// Append persists a new message and returns it with its id and timestamp set.
	Append(ctx context.Context, roomID, senderID, content string) (Message, error)

	// ListByRoom returns messages of roomID ascending by timestamp, insertion order on ties.
	// With since set it returns the first limit messages strictly after since; with since nil
	// it returns the newest limit messages. limit <= 0 means no cap.
	ListByRoom(ctx context.Context, roomID string, since *time.Time, limit int) ([]Message, error)

	// Close releases the store's resources.
	Close() error
}
