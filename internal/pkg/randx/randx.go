/*
Package randx generates identifiers for connections and stored messages.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// ConnectionPrefix marks identifiers handed to live connections so they are easy to grep in logs.
const ConnectionPrefix = "conn_"

// ConnectionID returns a fresh opaque identifier for a transport connection.
func ConnectionID() string {
	return ConnectionPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// MessageID returns a UUID v4 string for a stored message.
func MessageID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether id parses as a UUID.
func IsValidUUID(id string) bool {
	return uuid.Validate(id) == nil
}
