package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clubchat/internal/app/club"
	"clubchat/internal/app/message"
)

const (
	appendMessageSQL = `
INSERT INTO messages (club_id, sender_id, content)
VALUES ($1, $2, $3)
RETURNING id::text, created_at`

	listMessagesSinceSQL = `
SELECT id::text, club_id::text, sender_id::text, content, created_at
FROM messages
WHERE club_id = $1 AND created_at > $2
ORDER BY seq
LIMIT $3`

	listLatestMessagesSQL = `
SELECT id::text, club_id::text, sender_id::text, content, created_at
FROM (
    SELECT id, club_id, sender_id, content, created_at, seq
    FROM messages
    WHERE club_id = $1
    ORDER BY seq DESC
    LIMIT $2
) latest
ORDER BY seq`
)

// MessageStore is a message.Store on the messages table.
type MessageStore struct {
	q Querier
}

// NewMessageStore returns a message.Store backed by q.
func NewMessageStore(q Querier) *MessageStore {
	return &MessageStore{q: q}
}

// Append implements message.Store. The timestamp comes from the database clock.
func (s *MessageStore) Append(ctx context.Context, roomID, senderID, content string) (message.Message, error) {
	ids, ok := parseIDs(roomID, senderID)
	if !ok {
		return message.Message{}, fmt.Errorf("append message: room %q or sender %q is not a valid id", roomID, senderID)
	}

	msg := message.Message{RoomID: roomID, SenderID: senderID, Content: content}

	err := s.q.QueryRow(ctx, appendMessageSQL, ids[0], ids[1], content).Scan(&msg.ID, &msg.Timestamp)
	if IsForeignKeyViolation(err) {
		return message.Message{}, fmt.Errorf("append message to %s: %w", roomID, club.ErrNotFound)
	}
	if err != nil {
		return message.Message{}, fmt.Errorf("append message to %s: %w", roomID, err)
	}

	msg.Timestamp = msg.Timestamp.UTC()
	return msg, nil
}

// ListByRoom implements message.Store.
func (s *MessageStore) ListByRoom(ctx context.Context, roomID string, since *time.Time, limit int) ([]message.Message, error) {
	ids, ok := parseIDs(roomID)
	if !ok {
		return []message.Message{}, nil
	}

	var (
		rows pgx.Rows
		err  error
	)
	if since != nil {
		rows, err = s.q.Query(ctx, listMessagesSinceSQL, ids[0], since.UTC(), limitArg(limit))
	} else {
		rows, err = s.q.Query(ctx, listLatestMessagesSQL, ids[0], limitArg(limit))
	}
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", roomID, err)
	}

	msgs, err := pgx.CollectRows(rows, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("scan messages of %s: %w", roomID, err)
	}

	return msgs, nil
}

// Close implements message.Store. The pool is owned by the caller.
func (s *MessageStore) Close() error {
	return nil
}

func scanMessage(row pgx.CollectableRow) (message.Message, error) {
	var m message.Message
	if err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Timestamp); err != nil {
		return message.Message{}, err
	}
	m.Timestamp = m.Timestamp.UTC()
	return m, nil
}

// limitArg maps a non-positive limit to SQL NULL, which LIMIT treats as no limit.
func limitArg(limit int) *int64 {
	if limit <= 0 {
		return nil
	}
	l := int64(limit)
	return &l
}
