package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionID_UniqueAndPrefixed(t *testing.T) {
	req := require.New(t)
	seen := make(map[string]struct{})

	for range 100 {
		id := ConnectionID()
		req.True(strings.HasPrefix(id, ConnectionPrefix))
		req.Len(id, len(ConnectionPrefix)+32)
		seen[id] = struct{}{}
	}

	req.Len(seen, 100)
}

func TestMessageID_IsUUID(t *testing.T) {
	req := require.New(t)

	req.True(IsValidUUID(MessageID()))
	req.False(IsValidUUID("not-a-uuid"))
}
