// Package httpapi serves the visa REST API consumed by the terminal client.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps collects what NewRouter wires together.
type RouterDeps struct {
	Visas        VisaService
	Applications ApplicationService
	Users        UserService

	Verifier    auth.Verifier
	RateLimiter *RateLimiter
	Metrics     *Collector
	Gatherer    prometheus.Gatherer
	Logger      logging.Logger
}

// NewRouter builds the API. Reads of visas are public; every other route
// needs a bearer token, and mutations pass the rate limiter.
//
// Middleware order: RealIP -> RequestID -> Logging -> Metrics -> Recover.
func NewRouter(deps RouterDeps) http.Handler {
	h := &handlers{
		visas:        deps.Visas,
		applications: deps.Applications,
		users:        deps.Users,
		logger:       deps.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(Logging(deps.Logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(Recover(deps.Logger))

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/healthz", h.health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", MetricsHandler(deps.Gatherer))
	}

	authn := Authenticate(deps.Verifier, deps.Metrics)
	limit := deps.RateLimiter.Middleware

	r.Route("/visas", func(r chi.Router) {
		r.Get("/", h.listVisas)
		r.Get("/{id}", h.getVisa)
		r.Get("/user/{email}", h.listVisasByOwner)

		r.Group(func(r chi.Router) {
			r.Use(authn, limit)
			r.Post("/", h.createVisa)
			r.Put("/{id}", h.updateVisa)
			r.Delete("/{id}", h.deleteVisa)
		})
	})

	r.Route("/applications", func(r chi.Router) {
		r.Use(authn)
		r.Get("/user/{email}", h.listApplications)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/", h.createApplication)
			r.Delete("/{id}", h.deleteApplication)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authn)
		r.Get("/{email}", h.getUser)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/", h.saveUser)
			r.Put("/{email}", h.updateUser)
		})
	})

	return r
}
