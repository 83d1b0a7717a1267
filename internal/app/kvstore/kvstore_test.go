package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openLog(t *testing.T) *MessageLog {
	t.Helper()

	l, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func appendN(t *testing.T, l *MessageLog, room string, n int) []string {
	t.Helper()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		msg, err := l.Append(context.Background(), room, "u1", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestMessageLog_AppendAssignsIDAndTimestamp(t *testing.T) {
	l := openLog(t)

	msg, err := l.Append(context.Background(), "club-1", "u1", "hello")

	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "club-1", msg.RoomID)
	require.Equal(t, "u1", msg.SenderID)
	require.Equal(t, "hello", msg.Content)
	require.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}

func TestMessageLog_ListAllInAppendOrder(t *testing.T) {
	// Given
	l := openLog(t)
	ids := appendN(t, l, "club-1", 20)

	// When
	msgs, err := l.ListByRoom(context.Background(), "club-1", nil, 0)

	// Then
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	for i, m := range msgs {
		require.Equal(t, ids[i], m.ID)
		if i > 0 {
			require.True(t, m.Timestamp.After(msgs[i-1].Timestamp))
		}
	}
}

func TestMessageLog_ListLatest(t *testing.T) {
	l := openLog(t)
	ids := appendN(t, l, "club-1", 10)

	msgs, err := l.ListByRoom(context.Background(), "club-1", nil, 3)

	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, ids[7:], []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestMessageLog_ListSince(t *testing.T) {
	// Given
	l := openLog(t)
	appendN(t, l, "club-1", 5)
	all, err := l.ListByRoom(context.Background(), "club-1", nil, 0)
	require.NoError(t, err)

	// When
	since := all[1].Timestamp
	after, err := l.ListByRoom(context.Background(), "club-1", &since, 0)

	// Then
	require.NoError(t, err)
	require.Len(t, after, 3)
	require.Equal(t, all[2].ID, after[0].ID)

	capped, err := l.ListByRoom(context.Background(), "club-1", &since, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	require.Equal(t, all[3].ID, capped[1].ID)
}

func TestMessageLog_RoomsAreIsolated(t *testing.T) {
	// room ids that share a textual prefix must not leak into each other
	l := openLog(t)
	appendN(t, l, "a", 2)
	appendN(t, l, "a:b", 3)

	a, err := l.ListByRoom(context.Background(), "a", nil, 0)
	require.NoError(t, err)
	require.Len(t, a, 2)

	ab, err := l.ListByRoom(context.Background(), "a:b", nil, 0)
	require.NoError(t, err)
	require.Len(t, ab, 3)

	empty, err := l.ListByRoom(context.Background(), "nobody", nil, 0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMessageLog_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(dir)
	require.NoError(t, err)
	ids := appendN(t, l, "club-1", 3)
	require.NoError(t, l.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	msgs, err := reopened.ListByRoom(context.Background(), "club-1", nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, ids[2], msgs[2].ID)
}

func TestMessageLog_KeepsAppendOrderAcrossReopenWhenClockStepsBack(t *testing.T) {
	// Given a message stamped ahead of the wall clock, as after an NTP correction
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	l.lastTS = time.Now().Add(time.Minute).UnixNano()
	first, err := l.Append(context.Background(), "club-1", "u1", "first")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// When the log is reopened and another message appended
	reopened, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	second, err := reopened.Append(context.Background(), "club-2", "u1", "second")
	require.NoError(t, err)
	third, err := reopened.Append(context.Background(), "club-1", "u1", "third")
	require.NoError(t, err)

	// Then timestamps keep increasing and the room lists in append order
	require.True(t, second.Timestamp.After(first.Timestamp))
	require.True(t, third.Timestamp.After(second.Timestamp))

	msgs, err := reopened.ListByRoom(context.Background(), "club-1", nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "third", msgs[1].Content)
}

func TestTimestampOf(t *testing.T) {
	ts, err := timestampOf(messageKey("club:1", 42, "id-1"))
	require.NoError(t, err)
	require.Equal(t, int64(42), ts)

	_, err = timestampOf([]byte("msg:broken"))
	require.Error(t, err)
}

func TestMessageLog_HonoursCancelledContext(t *testing.T) {
	l := openLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Append(ctx, "club-1", "u1", "late")
	require.ErrorIs(t, err, context.Canceled)
}
