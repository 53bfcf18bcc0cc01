package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	sfhttp "github.com/sparkcrackers/storefront/pkg/http"
)

func TestOrders_ListAndGet(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []models.Order{{ID: "o1", Status: models.StatusShipped}})
	})
	f.handle("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, models.Order{ID: r.PathValue("id"), Status: models.StatusPending, Total: 599})
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	list, err := sf.Orders.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusShipped, list[0].Status)

	o, err := sf.Orders.Get(context.Background(), "o7")
	require.NoError(t, err)
	assert.Equal(t, "o7", o.ID)
	assert.Equal(t, 599.0, o.Total)
}

func TestOrders_CancelRefusedLocally(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, models.Order{ID: r.PathValue("id"), Status: models.StatusDelivered})
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	_, err := sf.Orders.Cancel(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Zero(t, f.count("PUT /api/orders/o1/cancel"))
}

func TestOrders_Cancel(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, models.Order{ID: r.PathValue("id"), Status: models.StatusConfirmed})
	})
	f.handle("PUT /api/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, models.Order{ID: r.PathValue("id"), Status: models.StatusCancelled})
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	o, err := sf.Orders.Cancel(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, o.Status)
}

func liveHandler(t *testing.T, events ...models.OrderEvent) http.HandlerFunc {
	up := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-u1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		// Wait for the client to hang up.
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func TestOrders_WatchStopsAtTerminalStatus(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders/{id}/live", liveHandler(t,
		models.OrderEvent{OrderID: "o1", Status: models.StatusShipped},
		models.OrderEvent{OrderID: "o1", Status: models.StatusDelivered},
		models.OrderEvent{OrderID: "o1", Status: models.StatusCancelled},
	))
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	var seen []models.OrderStatus
	err := sf.Orders.Watch(context.Background(), "o1", func(ev models.OrderEvent) bool {
		seen = append(seen, ev.Status)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []models.OrderStatus{models.StatusShipped, models.StatusDelivered}, seen)
	sfhttp.DefaultClient.CloseIdleConnections()
	f.srv.Close()
}

func TestOrders_WatchCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders/{id}/live", liveHandler(t,
		models.OrderEvent{OrderID: "o1", Status: models.StatusConfirmed},
	))
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	ctx, cancel := context.WithCancel(context.Background())
	err := sf.Orders.Watch(ctx, "o1", func(ev models.OrderEvent) bool {
		cancel()
		return true
	})
	assert.ErrorIs(t, err, context.Canceled)
	sfhttp.DefaultClient.CloseIdleConnections()
	f.srv.Close()
}

func TestOrders_WatchUnauthorizedSignsOut(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/orders/{id}/live", liveHandler(t))
	sf, _ := newStorefront(t, f)
	require.NoError(t, sf.Session.Start(context.Background(), "stale", shopper))

	err := sf.Orders.Watch(context.Background(), "o1", func(models.OrderEvent) bool { return true })
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, sf.Session.IsAuthenticated())
}
