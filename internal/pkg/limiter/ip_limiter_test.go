package limiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_MiddlewareBlocksAfterBurst(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Limit(0.001), 2)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		handler.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	req.Equal([]int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Limit(0.001), 1)

	req.True(l.GetLimiter("10.0.0.1").Allow())
	req.False(l.GetLimiter("10.0.0.1").Allow())
	req.True(l.GetLimiter("10.0.0.2").Allow())
	req.Equal(2, l.Len())
}

func TestIPRateLimiter_RemoveIdle(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Limit(1), 1)
	req.True(l.GetLimiter("10.0.0.1").Allow())
	l.GetLimiter("10.0.0.2")

	// Only the untouched bucket is full right now.
	req.Equal(1, l.removeIdle(time.Now()))
	// An hour later the drained bucket has refilled too.
	req.Equal(1, l.removeIdle(time.Now().Add(time.Hour)))
	req.Equal(0, l.Len())
}

func TestClientIP(t *testing.T) {
	req := require.New(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.RemoteAddr = "192.168.1.20:4000"
	req.Equal("192.168.1.20", ClientIP(r))

	r.RemoteAddr = "192.168.1.20"
	req.Equal("192.168.1.20", ClientIP(r))

	r.RemoteAddr = ""
	req.Equal("unknown_ip", ClientIP(r))
}
