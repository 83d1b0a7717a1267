package chat

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingSink is an in-memory Sink that keeps every frame it accepts.
type recordingSink struct {
	id string

	mu         sync.Mutex
	frames     [][]byte
	full       bool
	terminated []int
}

func newRecordingSink(id string) *recordingSink {
	return &recordingSink{id: id}
}

func (s *recordingSink) ID() string { return s.id }

func (s *recordingSink) Deliver(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.full {
		return ErrQueueFull
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *recordingSink) Terminate(code int, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = append(s.terminated, code)
}

func (s *recordingSink) setFull(full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = full
}

func (s *recordingSink) closeCodes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.terminated...)
}

type decodedEvent struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *recordingSink) events(t *testing.T) []decodedEvent {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]decodedEvent, 0, len(s.frames))
	for _, f := range s.frames {
		var ev decodedEvent
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func (s *recordingSink) eventsOfType(t *testing.T, typ EventType) []decodedEvent {
	t.Helper()

	var out []decodedEvent
	for _, ev := range s.events(t) {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func decodePayload[T any](t *testing.T, ev decodedEvent) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(ev.Payload, &v))
	return v
}
