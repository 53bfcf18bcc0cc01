package kernel_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/payment"
	"github.com/sparkcrackers/storefront/app/services"
	"github.com/sparkcrackers/storefront/config"
	_ "github.com/sparkcrackers/storefront/database/migrations"
	"github.com/sparkcrackers/storefront/database/seeders"
	"github.com/sparkcrackers/storefront/internal/kernel"
	"github.com/sparkcrackers/storefront/pkg/database"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/migration"
	"github.com/sparkcrackers/storefront/pkg/session"
	"github.com/sparkcrackers/storefront/pkg/testkit"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

const testSecret = "kernel-test-secret"

var (
	sparklers = seeders.ProductID("Electric Sparklers 10 cm")
	rocket    = seeders.ProductID("Whistling Rocket")
)

// newKernel boots the API over a fresh in-memory database, migrated and
// seeded.
func newKernel(t *testing.T) *kernel.HTTPKernel {
	t.Helper()
	logger.SetOutput(io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	_, err = migration.New(db).Run()
	require.NoError(t, err)
	require.NoError(t, seeders.RunAll(db, io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	return kernel.NewHTTPKernel(kernel.Options{
		DB:            db,
		Hub:           hub,
		PaymentSecret: testSecret,
		RateLimit:     10000,
		AuthAttempts:  1000,
	})
}

func adminCredentials() (string, string) {
	return config.Get("ADMIN_EMAIL", "admin@sparkcrackers.test"), config.Get("ADMIN_PASSWORD", "admin123")
}

func TestFlows(t *testing.T) {
	k := newKernel(t)
	email, password := adminCredentials()

	testkit.NewRunner(k.Handler()).
		Set("sparklers", sparklers).
		Set("rocket", rocket).
		Set("adminEmail", email).
		Set("adminPassword", password).
		RunDir(t, "testdata/flows")
}

func TestRoutesAreNamed(t *testing.T) {
	k := newKernel(t)

	seen := map[string]bool{}
	for _, r := range k.Routes() {
		assert.NotEmpty(t, r.Name, "%s %s", r.Method, r.Path)
		seen[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /api/auth/login",
		"PUT /api/cart/{productId}",
		"POST /api/payments/create-order",
		"GET /api/orders/{id}/live",
		"PUT /api/orders/{id}/status",
	} {
		assert.True(t, seen[want], want)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	k := newKernel(t)
	h := k.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), `route="/api/products"`)
}

// shopper returns a storefront signed up against srv with a filled cart.
func shopper(t *testing.T, srv *httptest.Server, gw payment.Gateway, email string) *services.Storefront {
	t.Helper()
	ctx := context.Background()

	sf := services.Open(srv.URL+"/api", session.NewMemory(), services.Deps{Gateway: gw})
	t.Cleanup(sf.Close)

	_, err := sf.Auth.Signup(ctx, models.SignupInput{
		FirstName: "Asha", LastName: "Rao", Email: email, Password: "secret1", Phone: "9876543210",
	})
	require.NoError(t, err)

	p, err := sf.Catalog.Get(ctx, rocket)
	require.NoError(t, err)
	require.NoError(t, sf.Cart.Add(ctx, p, 2))
	return sf
}

func checkout(t *testing.T, sf *services.Storefront, method models.PaymentMethod) (*services.Outcome, error) {
	t.Helper()
	flow, err := sf.Checkout()
	require.NoError(t, err)

	flow.SetContact(services.ContactForm{Email: "asha@example.com", Phone: "9876543210"})
	require.NoError(t, flow.NextStep())
	flow.SetShipping(services.ShippingForm{FirstName: "Asha", Street: "12 MG Road", City: "Sivakasi", Pincode: "626123"})
	require.NoError(t, flow.NextStep())
	require.NoError(t, flow.SetPaymentMethod(method))
	return flow.PlaceOrder(context.Background())
}

func TestOnlineCheckoutThroughStorefront(t *testing.T) {
	srv := httptest.NewServer(newKernel(t).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()

	gw := payment.NewSandbox(testSecret)
	sf := shopper(t, srv, gw, "asha@example.com")

	out, err := checkout(t, sf, models.PaymentUPI)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.Opened())
	assert.Equal(t, "/orders/"+out.OrderID, out.RedirectTo)
	assert.True(t, sf.Cart.IsEmpty())

	order, err := sf.Orders.Get(ctx, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.PaymentUPI, order.PaymentMethod)
	assert.Equal(t, 999.0, order.Total, "2 × 450 plus shipping")
	assert.NotEmpty(t, order.GatewayPaymentID)

	p, err := sf.Catalog.Get(ctx, rocket)
	require.NoError(t, err)
	assert.Equal(t, 148, p.Stock)

	// replaying the widget result returns the same order
	var again models.VerifyPaymentResponse
	err = sf.Client.Post(ctx, "/payments/verify", models.VerifyPaymentInput{
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: order.GatewayPaymentID,
		Signature:        payment.Sign(order.GatewayOrderID, order.GatewayPaymentID, testSecret),
	}, "payments.verify", "Payment verification failed", &again)
	require.NoError(t, err)
	assert.Equal(t, out.OrderID, again.OrderID)

	orders, err := sf.Orders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	srv := httptest.NewServer(newKernel(t).Handler())
	t.Cleanup(srv.Close)

	forger := payment.GatewayFunc(func(ctx context.Context, c payment.Checkout) (models.PaymentResult, error) {
		pid := payment.NewPaymentID()
		return models.PaymentResult{
			GatewayOrderID:   c.Order.OrderID,
			GatewayPaymentID: pid,
			Signature:        payment.Sign(c.Order.OrderID, pid, "wrong-secret"),
		}, nil
	})
	sf := shopper(t, srv, forger, "forger@example.com")

	_, err := checkout(t, sf, models.PaymentCard)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	assert.Equal(t, "Payment verification failed", err.Error())
	assert.False(t, sf.Cart.IsEmpty(), "cart kept for a retry")

	orders, err := sf.Orders.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderHonoursIdempotencyKey(t *testing.T) {
	srv := httptest.NewServer(newKernel(t).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()
	sf := shopper(t, srv, nil, "keys@example.com")

	input := models.OrderInput{
		Items: []models.OrderLineInput{{ProductID: rocket, Quantity: 2}},
		ShippingAddress: models.ShippingAddress{
			FirstName: "Asha", Email: "keys@example.com", Phone: "9876543210",
			Street: "12 MG Road", City: "Sivakasi", Pincode: "626123",
		},
		PaymentMethod: models.PaymentCard,
	}
	create := func(key string) models.PaymentOrder {
		var po models.PaymentOrder
		require.NoError(t, sf.Client.Do(ctx, api.Call{
			Method: http.MethodPost, Path: "/payments/create-order",
			Header: map[string]string{"Idempotency-Key": key},
			Body:   input, Endpoint: "payments.create_order",
		}, &po))
		return po
	}

	first := create("key-1")
	assert.Equal(t, int64(99900), first.Amount)
	assert.Equal(t, "INR", first.Currency)
	assert.True(t, strings.HasPrefix(first.OrderID, "order_"))

	assert.Equal(t, first, create("key-1"))
	assert.NotEqual(t, first.OrderID, create("key-2").OrderID)

	input.PaymentMethod = models.PaymentCOD
	err := sf.Client.Post(ctx, "/payments/create-order", input, "payments.create_order", "", nil)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
}

func TestLiveOrderStatus(t *testing.T) {
	srv := httptest.NewServer(newKernel(t).Handler())
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sf := shopper(t, srv, nil, "live@example.com")
	out, err := checkout(t, sf, models.PaymentCOD)
	require.NoError(t, err)

	admin := services.Open(srv.URL+"/api", session.NewMemory(), services.Deps{})
	t.Cleanup(admin.Close)
	email, password := adminCredentials()
	_, err = admin.Auth.Login(ctx, email, password)
	require.NoError(t, err)

	events := make(chan models.OrderEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- sf.Orders.Watch(ctx, out.OrderID, func(ev models.OrderEvent) bool {
			events <- ev
			return true
		})
	}()

	next := func() models.OrderEvent {
		select {
		case ev := <-events:
			return ev
		case <-ctx.Done():
			t.Fatal("no status event")
			return models.OrderEvent{}
		}
	}
	assert.Equal(t, models.StatusPending, next().Status, "current status on connect")

	for _, status := range []models.OrderStatus{models.StatusShipped, models.StatusDelivered} {
		var order models.Order
		require.NoError(t, admin.Client.Put(ctx, "/orders/"+out.OrderID+"/status",
			models.StatusInput{Status: status}, "orders.status", "", &order))
		ev := next()
		assert.Equal(t, status, ev.Status)
		assert.Equal(t, out.OrderID, ev.OrderID)
	}

	select {
	case err := <-done:
		assert.NoError(t, err, "watch ends on a terminal status")
	case <-ctx.Done():
		t.Fatal("watch did not stop")
	}
}

func TestLiveRequiresOwner(t *testing.T) {
	srv := httptest.NewServer(newKernel(t).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()

	owner := shopper(t, srv, nil, "owner@example.com")
	out, err := checkout(t, owner, models.PaymentCOD)
	require.NoError(t, err)

	other := shopper(t, srv, nil, "other@example.com")
	_, err = other.Orders.Get(ctx, out.OrderID)
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err))

	err = other.Orders.Watch(ctx, out.OrderID, func(models.OrderEvent) bool { return true })
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err))
	assert.True(t, other.Session.IsAuthenticated())
}
