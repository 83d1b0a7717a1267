package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomLocks_SerializesSameRoom(t *testing.T) {
	l := newRoomLocks()

	unlock := l.lock("club-1")

	acquired := make(chan struct{})
	go func() {
		release := l.lock("club-1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same room acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestRoomLocks_IndependentRooms(t *testing.T) {
	l := newRoomLocks()

	unlock := l.lock("club-1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		l.lock("club-2")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another room blocked")
	}
}

func TestRoomLocks_ReleasesEntries(t *testing.T) {
	l := newRoomLocks()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.lock("club-1")()
		}()
	}
	wg.Wait()

	require.Zero(t, l.len())
}
