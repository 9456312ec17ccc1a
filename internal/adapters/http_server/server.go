package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct{ mux *chi.Mux }

// New builds the router with the shared middleware chain. origins lists the
// dashboard origins allowed by CORS; "*" disables credentials.
func New(origins []string) *Server {
	m := chi.NewRouter()

	allowCredentials := true
	for _, o := range origins {
		if o == "*" {
			allowCredentials = false
			break
		}
	}

	// all middlewares go before any routes are added
	m.Use(chimw.RealIP)
	m.Use(RequestID)
	m.Use(chimw.Recoverer)
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "Location", "X-Request-ID", "X-Sort-Column", "X-Sort-Desc"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))
	m.Use(Timeout(30 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	m.Use(Bearer)

	return &Server{mux: m}
}

// Mux is the traced root handler.
func (s *Server) Mux() http.Handler { return otelhttp.NewHandler(s.mux, "hotel-desk-bff") }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
