/*
Package errs defines the business error codes shared by the REST API and the chat
WebSocket protocol, and the CustomError type that carries them.
*/
package errs

// 1xxx: request handling
const (
	// ErrInvalidParams indicates that request or event parameters failed validation.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the Content-Type header is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON body or frame.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after a valid JSON value.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the caller is sending too fast.
	ErrRateLimitExceeded = 1007

	// ErrUnsupportedEvent indicates an inbound chat event type the server does not know.
	ErrUnsupportedEvent = 1008
)

// 2xxx: rooms and message content
const (
	// ErrRoomNotFound indicates that the club behind a room id does not exist.
	ErrRoomNotFound = 2103

	// ErrMessageContentTooLong indicates that a chat message exceeds the size limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates a chat message with no visible content.
	ErrMessageEmpty = 2202

	// ErrMessageNotDelivered indicates that a chat message could not be persisted and was not broadcast.
	ErrMessageNotDelivered = 2203
)

// 3xxx: identity and membership
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3005

	// ErrNotClubMember indicates that the user is neither admin nor member of the club.
	ErrNotClubMember = 3101

	// ErrNotJoined indicates a chat event sent before a successful join.
	ErrNotJoined = 3102

	// ErrAlreadyJoined indicates a second join on a connection that already holds a session.
	ErrAlreadyJoined = 3103
)

// 5xxx: internal
const (
	// ErrUnknown is an unclassified internal error.
	ErrUnknown = 5000
)
