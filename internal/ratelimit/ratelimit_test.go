package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/ratelimit"
)

func TestAllow(t *testing.T) {
	l, stop := ratelimit.New(1, 2)
	defer stop()

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))

	// buckets are independent
	require.True(t, l.Allow("b"))
	require.True(t, l.Allow("b"))
	require.False(t, l.Allow("b"))
}

func TestIPKey(t *testing.T) {
	tests := []struct {
		remote string
		key    string
	}{
		{"123.123.123.123:5175", "ip: 123.123.123.123"},
		{"123.123.123.123", "ip: 123.123.123.123"},
		{"[::1]:80", "ip: ::1"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			require.Equal(t, tt.key, ratelimit.IPKey(&http.Request{RemoteAddr: tt.remote}))
		})
	}
}

func TestMiddleware(t *testing.T) {
	l, stop := ratelimit.New(1, 1)
	defer stop()

	calls := 0
	h := l.Middleware(ratelimit.IPKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"error":"rate_limited"}`, rec.Body.String())
	require.Equal(t, 1, calls)
}
