// Package kernel assembles the sandbox API's http.Handler: the global
// middleware stack, the operational endpoints and the /api routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/sparkcrackers/storefront/app/routes"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/metrics"
	"github.com/sparkcrackers/storefront/pkg/middleware"
	"github.com/sparkcrackers/storefront/pkg/reqid"
	"github.com/sparkcrackers/storefront/pkg/response"
	"github.com/sparkcrackers/storefront/pkg/router"
	"github.com/sparkcrackers/storefront/pkg/ws"
)

// Options configures a kernel. DB and Hub are required.
type Options struct {
	DB            *gorm.DB
	Cache         *cache.Store
	CatalogTTL    time.Duration
	Hub           *ws.Hub
	PaymentSecret string
	// RateLimit is the per-IP request budget per minute (default 200).
	RateLimit    int
	AuthAttempts int
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(o Options) *HTTPKernel {
	if o.RateLimit <= 0 {
		o.RateLimit = 200
	}

	r := router.New()

	// outermost first; reqid must precede the logger
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.NewRateLimiter(o.RateLimit, time.Minute).Middleware,
	)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", health(o.DB))

	routes.RegisterAPI(r, routes.Deps{
		DB:            o.DB,
		Cache:         o.Cache,
		CatalogTTL:    o.CatalogTTL,
		Hub:           o.Hub,
		PaymentSecret: o.PaymentSecret,
		AuthAttempts:  o.AuthAttempts,
	})

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists every mounted route for `storefront route:list`.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		response.OK(w, map[string]string{"status": "ok"})
	}
}
