package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/sermonchat/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/sermonchat/internal/api/middlewares"
	"github.com/markdave123-py/sermonchat/internal/config"
	"github.com/markdave123-py/sermonchat/internal/metrics"
)

// requestTimeoutSlack is added to the completion timeout so the provider
// deadline fires before the router's.
const requestTimeoutSlack = 5 * time.Second

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, chat handlers.ChatOrchestrator, sermons handlers.SermonLibrary, m *metrics.Metrics) *Server {
	chatHandler := handlers.NewChatHandler(chat)
	sermonHandler := handlers.NewSermonHandler(sermons)
	healthHandler := handlers.NewHealthHandler(cfg.Environment(), cfg.HasAPIKey())

	requestTimeout := 60 * time.Second
	if cfg.CompletionTimeout > 0 {
		requestTimeout = cfg.CompletionTimeout + requestTimeoutSlack
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(corsOptions(cfg.CORSOrigins)))

	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.Health)
		api.Post("/chat", chatHandler.Chat)

		api.Route("/admin/sermons", func(admin chi.Router) {
			admin.Get("/", sermonHandler.ListSermons)
			admin.Post("/", sermonHandler.CreateSermon)
			admin.Get("/{id}", sermonHandler.GetSermon)
			admin.Patch("/{id}/status", sermonHandler.UpdateStatus)
		})
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv}
}

func corsOptions(origins []string) cors.Options {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
