package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dorm-delivery/internal/http/handlers"
	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/http/middleware/ratelimit"
	"dorm-delivery/internal/http/pprofserver"
	"dorm-delivery/internal/logx"
)

const defaultRequestTimeout = 5 * time.Second

// Deps are the router's collaborators. RateLimit and Gatherer are optional.
type Deps struct {
	Logger    logx.Logger
	Base      *handlers.Handlers
	Tasks     *handlers.TaskHandler
	Admin     *handlers.AdminHandler
	Users     *handlers.UserHandler
	Identity  middleware.Identifier
	RateLimit *ratelimit.Middleware
	Metrics   middleware.HTTPMetrics
	Gatherer  prometheus.Gatherer
	Pprof     bool

	RequestTimeout time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(d.Logger, d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(d.RequestTimeout))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		// limit before Identity so rejected callers never reach the user directory
		if d.RateLimit != nil {
			r.Use(d.RateLimit.Handler())
		}
		r.Use(middleware.Identity(d.Logger, d.Identity))

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", d.Tasks.Create)
			r.Get("/", d.Tasks.List)
			r.Get("/available", d.Tasks.Available)
			r.Get("/assigned", d.Tasks.Assigned)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.Tasks.Get)
				r.Post("/accept", d.Tasks.Accept)
				r.Post("/start", d.Tasks.Start)
				r.Post("/mark-delivered", d.Tasks.MarkDelivered)
				r.Post("/fail", d.Tasks.Fail)
				r.Post("/confirm", d.Tasks.Confirm)
				r.Post("/pay", d.Tasks.Pay)
				r.Post("/release", d.Tasks.Release)
				r.Post("/refund", d.Tasks.Refund)
			})
		})

		r.Get("/users/me", d.Users.Me)
		r.Get("/admin/stats", d.Admin.Stats)

		if d.Pprof {
			r.Mount("/debug/pprof", pprofserver.Handler())
		}
	})

	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	return r
}
