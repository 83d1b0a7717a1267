/*
Package chat implements the membership-gated club chat.

A Broker owns the join, send and disconnect operations. It authorizes joins against
the club directory, persists every chat message through a message.Store and fans the
result out to every connection in the room. Transport lives in Client, which runs one
read and one write goroutine per WebSocket connection and drives the Broker from its
read loop, so each connection's events are handled in arrival order.
*/
package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"clubchat/internal/app/club"
	"clubchat/internal/app/message"
	"clubchat/internal/app/user"
	"clubchat/internal/pkg/errs"
	"clubchat/internal/pkg/logx"
)

// Broker coordinates sessions, authorization, persistence and fan-out.
type Broker struct {
	registry *Registry
	clubs    club.Directory
	users    user.Directory
	messages message.Store

	// locks serialize membership changes and append+fan-out within a room.
	locks *roomLocks

	logger zerolog.Logger
}

// NewBroker wires a Broker to its collaborators.
func NewBroker(registry *Registry, clubs club.Directory, users user.Directory, messages message.Store) *Broker {
	return &Broker{
		registry: registry,
		clubs:    clubs,
		users:    users,
		messages: messages,
		locks:    newRoomLocks(),
		logger:   logx.Component("broker"),
	}
}

// Registry returns the session registry the broker writes to.
func (b *Broker) Registry() *Registry {
	return b.registry
}

// Join authorizes sink for req.RoomID and announces the joiner to the room.
// Every rejection is also reported to sink as an error event. Unauthorized
// callers and directory failures get their connection terminated.
func (b *Broker) Join(ctx context.Context, sink Sink, req JoinRequest) error {
	connID := sink.ID()

	req, err := normalizeJoin(req)
	if err != nil {
		return b.reject(sink, err)
	}

	logger := b.logger.With().
		Str("conn_id", connID).
		Str("user_id", req.UserID).
		Str("room_id", req.RoomID).
		Logger()

	if _, joined := b.registry.Lookup(connID); joined {
		return b.reject(sink, errs.NewError(errs.ErrAlreadyJoined))
	}

	if req.AuthUserID != "" && req.AuthUserID != req.UserID {
		logger.Warn().Str("token_subject", req.AuthUserID).Msg("Join user id does not match token subject")
		return b.rejectAndClose(sink, errs.NewError(errs.ErrNotClubMember), CloseNotClubMember)
	}

	c, err := b.clubs.GetClub(ctx, req.RoomID)
	if errors.Is(err, club.ErrNotFound) {
		logger.Info().Msg("Join rejected, club not found")
		return b.reject(sink, errs.NewError(errs.ErrRoomNotFound))
	}
	if err != nil {
		logger.Error().Err(err).Msg("Club lookup failed during join")
		return b.rejectAndClose(sink, errs.NewError(errs.ErrUnknown), CloseInternalError)
	}

	if !c.Permits(req.UserID) {
		logger.Warn().Msg("Join rejected, user is not a club member")
		return b.rejectAndClose(sink, errs.NewError(errs.ErrNotClubMember), CloseNotClubMember)
	}

	frame, err := encode(TypeUserJoined, UserEventPayload{Username: req.Username})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode user-joined event")
		return b.rejectAndClose(sink, errs.NewError(errs.ErrUnknown), CloseInternalError)
	}

	unlock := b.locks.lock(req.RoomID)
	b.registry.Register(connID, NewSession(sink, req.UserID, req.Username, req.RoomID))
	delivered := b.fanOut(req.RoomID, frame)
	unlock()

	logger.Info().Int("delivered", delivered).Msg("User joined room")
	return nil
}

// Send persists text as a message from the connection's session and broadcasts it
// to every session in the room, sender included. Nothing is broadcast when persistence fails.
func (b *Broker) Send(ctx context.Context, sink Sink, text string) error {
	session, ok := b.registry.Lookup(sink.ID())
	if !ok {
		return b.reject(sink, errs.NewError(errs.ErrNotJoined))
	}

	content, err := normalizeContent(text)
	if err != nil {
		return b.reject(sink, err)
	}

	logger := b.logger.With().
		Str("conn_id", session.ConnID).
		Str("user_id", session.UserID).
		Str("room_id", session.RoomID).
		Logger()

	username, photo := b.senderDisplay(ctx, session, logger)

	unlock := b.locks.lock(session.RoomID)
	defer unlock()

	msg, err := b.messages.Append(ctx, session.RoomID, session.UserID, content)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to persist chat message")
		return b.reject(sink, errs.NewError(errs.ErrMessageNotDelivered))
	}

	frame, err := encode(TypeReceive, ReceivePayload{
		ID:        msg.ID,
		Username:  username,
		Photo:     photo,
		UserID:    msg.SenderID,
		Message:   msg.Content,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to encode persisted message")
		return b.reject(sink, errs.NewError(errs.ErrMessageNotDelivered))
	}

	delivered := b.fanOut(session.RoomID, frame)
	logger.Debug().Str("message_id", msg.ID).Int("delivered", delivered).Msg("Message broadcast")

	return nil
}

// senderDisplay reads the sender's current name and photo, falling back to the
// join-time name and no photo when the directory cannot answer.
func (b *Broker) senderDisplay(ctx context.Context, session Session, logger zerolog.Logger) (string, *string) {
	info, err := b.users.GetDisplayInfo(ctx, session.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("Display info lookup failed, using join-time name")
		return session.DisplayName, nil
	}

	name := info.Name
	if name == "" {
		name = session.DisplayName
	}

	if info.PhotoURL == "" {
		return name, nil
	}
	photo := info.PhotoURL
	return name, &photo
}

// Disconnect removes the connection's session and tells the rest of the room.
// It is a no-op for connections that never joined.
func (b *Broker) Disconnect(connID string) {
	session, ok := b.registry.Lookup(connID)
	if !ok {
		return
	}

	unlock := b.locks.lock(session.RoomID)
	defer unlock()

	session, ok = b.registry.Unregister(connID)
	if !ok {
		return
	}

	frame, err := encode(TypeLeft, UserEventPayload{Username: session.DisplayName})
	if err != nil {
		b.logger.Error().Err(err).Str("conn_id", connID).Msg("Failed to encode left event")
		return
	}

	delivered := b.fanOut(session.RoomID, frame)

	b.logger.Info().
		Str("conn_id", connID).
		Str("user_id", session.UserID).
		Str("room_id", session.RoomID).
		Int("delivered", delivered).
		Msg("User left room")
}

// fanOut queues frame on every session in roomID and returns how many accepted it.
// A connection that cannot accept the frame is terminated.
func (b *Broker) fanOut(roomID string, frame []byte) int {
	delivered := 0

	for _, s := range b.registry.SessionsInRoom(roomID) {
		if err := s.sink.Deliver(frame); err != nil {
			b.logger.Warn().
				Err(err).
				Str("conn_id", s.ConnID).
				Str("room_id", roomID).
				Msg("Dropping slow connection")
			s.sink.Terminate(CloseSlowConsumer, "outbound queue full")
			continue
		}
		delivered++
	}

	return delivered
}

// reject reports err to sink and returns it.
func (b *Broker) reject(sink Sink, err error) error {
	if deliverErr := deliverError(sink, err); deliverErr != nil {
		b.logger.Warn().Err(deliverErr).Str("conn_id", sink.ID()).Msg("Failed to queue error event")
	}
	return err
}

// rejectAndClose reports err to sink, then terminates the connection with code.
func (b *Broker) rejectAndClose(sink Sink, err error, code int) error {
	b.reject(sink, err)
	sink.Terminate(code, errorPayloadOf(err).Message)
	return err
}
