package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPublishReachesTopicSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Upgrade(w, r, hub, r.URL.Query().Get("topic"))
	}))
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	got := make(chan string, 4)
	subErr := make(chan error, 1)
	go func() {
		subErr <- Subscribe(context.Background(), base+"?topic=order:1", nil, func(b []byte) bool {
			got <- string(b)
			return string(b) != "delivered"
		})
	}()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("order:2", []byte("ignored"))
	hub.Publish("order:1", []byte("shipped"))
	hub.Publish("order:1", []byte("delivered"))

	assert.Equal(t, "shipped", <-got)
	assert.Equal(t, "delivered", <-got)
	require.NoError(t, <-subErr)

	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	srv.Close()
	assert.Equal(t, 0, hub.Subscribers())
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Upgrade(w, r, hub, "order:9")
	}))
	defer srv.Close()

	subCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(subCtx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil, func([]byte) bool { return true })
	}()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	stop()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestHubStopClosesSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Upgrade(w, r, hub, "order:3")
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		done <- Subscribe(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil, func([]byte) bool { return true })
	}()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not closed when hub stopped")
	}
	hub.Publish("order:3", []byte("late"))
}
