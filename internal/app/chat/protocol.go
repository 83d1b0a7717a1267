package chat

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"clubchat/internal/pkg/errs"
)

// EventType names a frame on the chat WebSocket.
type EventType string

const (
	// inbound
	TypeJoin EventType = "join"
	TypeChat EventType = "chat"

	// outbound
	TypeUserJoined EventType = "user-joined"
	TypeReceive    EventType = "receive"
	TypeLeft       EventType = "left"
	TypeError      EventType = "error"
)

const (
	// MaxContentBytes is the largest chat message accepted after trimming.
	MaxContentBytes = 5000

	// MaxUsernameChars bounds the display name announced on join.
	MaxUsernameChars = 64
)

// WebSocket close codes used when the server ends a connection.
const (
	CloseGoingAway      = 1001
	CloseInternalError  = 1011
	CloseNotClubMember  = 4003
	CloseSlowConsumer   = 4008
	closeReasonMaxBytes = 120
)

// Inbound is the envelope of every client frame.
type Inbound struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is the envelope of every server frame.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// JoinRequest asks to attach the connection to a club's room.
type JoinRequest struct {
	UserID   string `json:"userId" validate:"required,max=128"`
	Username string `json:"username" validate:"required,max=64"`
	RoomID   string `json:"roomId" validate:"required,max=128"`

	// AuthUserID is the verified token subject, empty for anonymous connections.
	AuthUserID string `json:"-"`
}

// ChatRequest carries one chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// UserEventPayload is sent with user-joined and left.
type UserEventPayload struct {
	Username string `json:"username"`
}

// ReceivePayload is the broadcast copy of a persisted message.
type ReceivePayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Photo     *string   `json:"photo"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorPayload reports a rejected operation to the connection that caused it.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalizeJoin trims the request and validates it.
func normalizeJoin(req JoinRequest) (JoinRequest, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Username = strings.TrimSpace(req.Username)
	req.RoomID = strings.TrimSpace(req.RoomID)

	if err := validate.Struct(req); err != nil {
		return req, errs.NewError(errs.ErrInvalidParams)
	}
	return req, nil
}

// normalizeContent trims text and enforces the content limits.
func normalizeContent(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.NewError(errs.ErrMessageEmpty)
	}
	if len(text) > MaxContentBytes {
		return "", errs.NewError(errs.ErrMessageContentTooLong, MaxContentBytes)
	}
	return text, nil
}

// encode marshals a server frame.
func encode(t EventType, payload any) ([]byte, error) {
	return json.Marshal(Event{Type: t, Payload: payload})
}

// errorPayloadOf maps any error to what the client is allowed to see.
func errorPayloadOf(err error) ErrorPayload {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return ErrorPayload{Code: customErr.Code, Message: customErr.Message}
	}
	unknown := errs.NewError(errs.ErrUnknown)
	return ErrorPayload{Code: unknown.Code, Message: unknown.Message}
}

// deliverError queues an error frame on sink. Delivery failures are returned, not retried.
func deliverError(sink Sink, err error) error {
	frame, marshalErr := encode(TypeError, errorPayloadOf(err))
	if marshalErr != nil {
		return marshalErr
	}
	return sink.Deliver(frame)
}

// truncateReason keeps a close reason within the control frame size limit.
func truncateReason(reason string) string {
	if len(reason) <= closeReasonMaxBytes {
		return reason
	}
	return reason[:closeReasonMaxBytes]
}
