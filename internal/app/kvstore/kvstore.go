/*
Package kvstore keeps the chat message log in an embedded Badger database.

Keys have the form "msg:{hex room id}:{19-digit unix nanos}:{message id}" so a prefix
scan over one room walks its messages in timestamp order. Timestamps are handed out
strictly increasing, starting past the newest stored key, which makes key order equal
to append order across restarts even if the clock steps back.
*/
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"clubchat/internal/app/message"
	"clubchat/internal/pkg/logx"
	"clubchat/internal/pkg/randx"
)

// MessageLog is a message.Store on Badger.
type MessageLog struct {
	db     *badger.DB
	logger zerolog.Logger

	mu     sync.Mutex
	lastTS int64
}

// diskMessage is the stored value. The room id lives in the key.
type diskMessage struct {
	ID       string `json:"id"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
	At       int64  `json:"at"`
}

// Open opens (or creates) the message log in dir.
func Open(dir string) (*MessageLog, error) {
	logger := logx.Component("badger")

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger: logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}

	lastTS, err := newestTimestamp(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read newest message timestamp: %w", err)
	}
	logger.Debug().Int64("last_ts", lastTS).Msg("Message log opened")

	return &MessageLog{db: db, logger: logger, lastTS: lastTS}, nil
}

// newestTimestamp returns the largest timestamp over every stored message key.
// Rooms are ordered by id in the key space, so all rooms are walked, keys only.
func newestTimestamp(db *badger.DB) (int64, error) {
	var newest int64
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			ts, err := timestampOf(it.Item().Key())
			if err != nil {
				return err
			}
			newest = max(newest, ts)
		}
		return nil
	})
	return newest, err
}

// timestampOf parses the timestamp segment of a message key.
func timestampOf(key []byte) (int64, error) {
	parts := strings.SplitN(string(key), ":", 4)
	if len(parts) != 4 {
		return 0, fmt.Errorf("malformed message key %q", key)
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed message key %q: %w", key, err)
	}
	return ts, nil
}

const keyPrefix = "msg:"

func roomPrefix(roomID string) []byte {
	return []byte(fmt.Sprintf("%s%x:", keyPrefix, roomID))
}

func messageKey(roomID string, at int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%x:%019d:%s", keyPrefix, roomID, at, id))
}

// nextTimestamp returns now, bumped past the previous timestamp if the clock has not moved.
func (l *MessageLog) nextTimestamp() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UnixNano()
	if ts <= l.lastTS {
		ts = l.lastTS + 1
	}
	l.lastTS = ts
	return ts
}

// Append implements message.Store.
func (l *MessageLog) Append(ctx context.Context, roomID, senderID, content string) (message.Message, error) {
	if err := ctx.Err(); err != nil {
		return message.Message{}, err
	}

	stored := diskMessage{
		ID:       randx.MessageID(),
		SenderID: senderID,
		Content:  content,
		At:       l.nextTimestamp(),
	}

	value, err := json.Marshal(stored)
	if err != nil {
		return message.Message{}, err
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(roomID, stored.At, stored.ID), value)
	})
	if err != nil {
		return message.Message{}, fmt.Errorf("store message in %s: %w", roomID, err)
	}

	return stored.toMessage(roomID), nil
}

// ListByRoom implements message.Store.
func (l *MessageLog) ListByRoom(ctx context.Context, roomID string, since *time.Time, limit int) ([]message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored []diskMessage
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		if since != nil {
			stored, err = scanForward(txn, roomID, since.UnixNano()+1, limit)
		} else {
			stored, err = scanLatest(txn, roomID, limit)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", roomID, err)
	}

	return lo.Map(stored, func(m diskMessage, _ int) message.Message {
		return m.toMessage(roomID)
	}), nil
}

// scanForward collects up to limit messages with timestamps at or after from.
func scanForward(txn *badger.Txn, roomID string, from int64, limit int) ([]diskMessage, error) {
	prefix := roomPrefix(roomID)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	out := []diskMessage{}
	for it.Seek(append(prefix, fmt.Sprintf("%019d", from)...)); it.ValidForPrefix(prefix); it.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		m, err := decode(it.Item())
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// scanLatest collects the newest limit messages, returned oldest first.
func scanLatest(txn *badger.Txn, roomID string, limit int) ([]diskMessage, error) {
	prefix := roomPrefix(roomID)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = true
	it := txn.NewIterator(opts)
	defer it.Close()

	// seek past the largest possible key of the room
	seekKey := append(append([]byte{}, prefix...), 0xff)

	out := []diskMessage{}
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		m, err := decode(it.Item())
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return lo.Reverse(out), nil
}

func decode(item *badger.Item) (diskMessage, error) {
	var m diskMessage
	err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &m)
	})
	if err != nil {
		return diskMessage{}, fmt.Errorf("decode %s: %w", item.Key(), err)
	}
	return m, nil
}

func (m diskMessage) toMessage(roomID string) message.Message {
	return message.Message{
		ID:        m.ID,
		RoomID:    roomID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Timestamp: time.Unix(0, m.At).UTC(),
	}
}

// Close implements message.Store.
func (l *MessageLog) Close() error {
	return l.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error().Msgf(format, args...)
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn().Msgf(format, args...)
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.logger.Debug().Msgf(format, args...)
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.logger.Trace().Msgf(format, args...)
}
