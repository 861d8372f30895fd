/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, picked up by the handler log lines
  2. RealIP:     Client address behind a proxy
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for browser clients
  5. RateLimit:  Token bucket shared by all clients (429 when empty)

ROUTES:
  /                                  Hello, World!
  {prefix}/transactions:parse        POST
  {prefix}/transactions:validate     POST
  {prefix}/transactions:filter       POST
  {prefix}/returns:nps               POST
  {prefix}/returns:index             POST
  {prefix}/performance               GET
  {prefix}/scenarios                 GET

  chi only treats "{...}" as a pattern, so the ":verb" suffixes are
  matched literally.

SECURITY NOTE:
  No authentication middleware. All endpoints are public and stateless.

SEE ALSO:
  - handlers.go: Handler implementations
  - config/config.go: Prefix, CORS origins, limiter settings
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/warp/roundup-engine/config"
	"github.com/warp/roundup-engine/logging"
	"golang.org/x/time/rate"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst), h.Logger))
	}

	log := h.Logger
	r.Get("/", logging.Wrapper("Root", log, h.Root))

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Post("/transactions:parse", logging.Wrapper("ParseTransactions", log, h.ParseTransactions))
		r.Post("/transactions:validate", logging.Wrapper("ValidateTransactions", log, h.ValidateTransactions))
		r.Post("/transactions:filter", logging.Wrapper("FilterTransactions", log, h.FilterTransactions))

		r.Post("/returns:nps", logging.Wrapper("ReturnsNPS", log, h.ReturnsNPS))
		r.Post("/returns:index", logging.Wrapper("ReturnsIndex", log, h.ReturnsIndex))

		r.Get("/performance", logging.Wrapper("Performance", log, h.Performance))
		r.Get("/scenarios", logging.Wrapper("ListScenarios", log, h.ListScenarios))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

// RateLimit rejects requests with 429 once limiter has no tokens left.
func RateLimit(limiter *rate.Limiter, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"remoteAddr": r.RemoteAddr,
					"request_id": middleware.GetReqID(r.Context()),
				}).Warn("Rate limit exceeded")
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
