package errs

import "net/http"

// errorMap holds the client-facing message and HTTP status for every code.
var errorMap = map[int]CustomError{
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnsupportedEvent:     {Code: ErrUnsupportedEvent, Message: "Unsupported event type %q."},

	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Club not found.", Status: http.StatusNotFound},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message is empty."},
	ErrMessageNotDelivered:   {Code: ErrMessageNotDelivered, Message: "Message could not be delivered. Please try again."},

	ErrUnauthorized:  {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrNotClubMember: {Code: ErrNotClubMember, Message: "Not authorized to join this club.", Status: http.StatusForbidden},
	ErrNotJoined:     {Code: ErrNotJoined, Message: "Join a club chat before sending messages."},
	ErrAlreadyJoined: {Code: ErrAlreadyJoined, Message: "This connection already joined a club chat."},

	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
