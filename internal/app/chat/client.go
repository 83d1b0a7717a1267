package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"clubchat/internal/pkg/errs"
	"clubchat/internal/pkg/logx"
	"clubchat/internal/pkg/req"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// upper bound for a single join or send, including directory and store calls.
	operationTimeout = 10 * time.Second

	defaultQueueSize = 256
	defaultChatRate  = rate.Limit(5)
	defaultChatBurst = 10
)

var (
	// ErrQueueFull is returned by Deliver when the client is not draining its queue.
	ErrQueueFull = errors.New("client send queue full")

	// ErrClientClosed is returned by Deliver after the write loop has stopped.
	ErrClientClosed = errors.New("client connection closed")
)

// State is the lifecycle stage of a connection.
type State int32

const (
	StateConnected State = iota
	StateAuthorizing
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthorizing:
		return "authorizing"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientOptions tunes a Client. Zero values select defaults.
type ClientOptions struct {
	// AuthUserID is the verified token subject, empty for anonymous connections.
	AuthUserID string

	QueueSize int
	ChatRate  rate.Limit
	ChatBurst int
}

type closeFrame struct {
	code   int
	reason string
}

// outbound is one item of the write queue: a text frame or a close request.
type outbound struct {
	data  []byte
	close *closeFrame
}

// Client is one WebSocket connection. It implements Sink for the Broker.
type Client struct {
	id         string
	conn       *websocket.Conn
	broker     *Broker
	authUserID string

	state atomic.Int32

	// send is never closed; done is closed when the write loop exits.
	send chan outbound
	done chan struct{}

	doneOnce      sync.Once
	terminateOnce sync.Once

	// limiter throttles chat events from this connection.
	limiter *rate.Limiter

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(id string, conn *websocket.Conn, broker *Broker, opts ClientOptions) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ChatRate <= 0 {
		opts.ChatRate = defaultChatRate
	}
	if opts.ChatBurst <= 0 {
		opts.ChatBurst = defaultChatBurst
	}

	return &Client{
		id:         id,
		conn:       conn,
		broker:     broker,
		authUserID: opts.AuthUserID,
		send:       make(chan outbound, opts.QueueSize),
		done:       make(chan struct{}),
		limiter:    rate.NewLimiter(opts.ChatRate, opts.ChatBurst),
		logger: logx.Component("client").With().
			Str("conn_id", id).
			Str("auth_user_id", opts.AuthUserID).
			Logger(),
	}
}

// ID implements Sink.
func (c *Client) ID() string {
	return c.id
}

// State returns the connection's current lifecycle stage.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.logger.Debug().Stringer("from", prev).Stringer("to", s).Msg("State changed")
	}
}

// Deliver implements Sink. It never blocks.
func (c *Client) Deliver(frame []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- outbound{data: frame}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Terminate implements Sink. Frames queued before the call are written first.
// If the queue has no room for the close request the connection is closed at once.
func (c *Client) Terminate(code int, reason string) {
	c.terminateOnce.Do(func() {
		c.logger.Info().Int("close_code", code).Str("reason", reason).Msg("Terminating connection")

		select {
		case c.send <- outbound{close: &closeFrame{code: code, reason: truncateReason(reason)}}:
		default:
			if err := c.conn.Close(); err != nil {
				c.logger.Warn().Err(err).Msg("Connection close error")
			}
		}
	})
}

// Run serves the connection until it closes. The write loop runs in its own
// goroutine; the read loop runs on the caller's. Cancelling ctx closes the
// connection with a going-away frame.
func (c *Client) Run(ctx context.Context) {
	go c.WritePump(ctx)
	c.ReadPump(ctx)
}

// ReadPump reads frames and dispatches them in arrival order. On exit the
// session is disconnected from the broker and the connection closed.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected close while reading")
			}
			return
		}

		c.dispatch(ctx, data)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.setState(StateClosed)
	c.broker.Disconnect(c.id)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error in cleanup")
	}
}

// dispatch routes one inbound frame.
func (c *Client) dispatch(ctx context.Context, data []byte) {
	if c.State() == StateClosed {
		return
	}

	var in Inbound
	if customErr := req.DecodeJSON(data, &in); customErr != nil {
		c.logger.Warn().Int("code", customErr.Code).Msg("Client sent invalid JSON")
		c.sendError(customErr)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	switch in.Type {
	case TypeJoin:
		c.handleJoin(opCtx, in.Payload)

	case TypeChat:
		c.handleChat(opCtx, in.Payload)

	default:
		c.logger.Warn().Str("event_type", string(in.Type)).Msg("Client sent unsupported event type")
		c.sendError(errs.NewError(errs.ErrUnsupportedEvent, in.Type))
	}
}

func (c *Client) handleJoin(ctx context.Context, payload json.RawMessage) {
	if c.State() == StateJoined {
		c.sendError(errs.NewError(errs.ErrAlreadyJoined))
		return
	}

	var join JoinRequest
	if customErr := req.DecodePayload(payload, &join); customErr != nil {
		c.sendError(customErr)
		return
	}
	join.AuthUserID = c.authUserID

	c.setState(StateAuthorizing)

	err := c.broker.Join(ctx, c, join)
	if err == nil {
		c.setState(StateJoined)
		return
	}

	// the broker has already terminated unauthorized and failed joins
	switch errs.CodeOf(err) {
	case errs.ErrNotClubMember, errs.ErrUnknown:
		c.setState(StateClosed)
	case errs.ErrAlreadyJoined:
		c.setState(StateJoined)
	default:
		c.setState(StateConnected)
	}
}

func (c *Client) handleChat(ctx context.Context, payload json.RawMessage) {
	var chat ChatRequest
	if customErr := req.DecodePayload(payload, &chat); customErr != nil {
		c.sendError(customErr)
		return
	}

	if c.State() == StateJoined && !c.limiter.Allow() {
		c.sendError(errs.NewError(errs.ErrRateLimitExceeded))
		return
	}

	_ = c.broker.Send(ctx, c, chat.Message)
}

func (c *Client) sendError(err error) {
	if deliverErr := deliverError(c, err); deliverErr != nil {
		c.logger.Warn().Err(deliverErr).Msg("Failed to queue error event")
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.doneOnce.Do(func() { close(c.done) })

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose(CloseGoingAway, "server shutting down")
			return

		case out := <-c.send:
			if out.close != nil {
				c.writeClose(out.close.code, out.close.reason)
				return
			}
			if !c.writeFrame(websocket.TextMessage, out.data) {
				return
			}

		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// writeFrame writes one frame. Returns false if the write loop should stop.
func (c *Client) writeFrame(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Info().Err(err).Int("message_type", messageType).Msg("Error writing frame")
		return false
	}

	return true
}

func (c *Client) writeClose(code int, reason string) {
	c.writeFrame(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
