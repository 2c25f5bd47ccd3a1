package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"facilitybook/internal/config"
	"facilitybook/internal/export"
	"facilitybook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Services are the collaborators the HTTP layer calls into.
type Services struct {
	Bookings      *service.BookingService
	Users         *service.UserService
	Notifications *service.NotificationService
	Reports       *service.ReportService
	Exporter      *export.Exporter
	Health        map[string]HealthCheck
}

// HTTPServer exposes the booking API. The acting user is named by the
// X-User-ID header.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	auth   *HTTPAuth
	logger *zerolog.Logger
	server *http.Server
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{cfg: cfg, svc: svc, auth: NewHTTPAuth(cfg), logger: logger}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// Report generation may take up to its own timeout.
		WriteTimeout: 90 * time.Second,
	}
	return s
}

func (s *HTTPServer) Handler() http.Handler { return s.server.Handler }

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.auth.Wrap)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/rooms", s.handleRooms)

		r.Get("/users", s.withActor(s.handleListUsers))
		r.Put("/users/{id}", s.withActor(s.handleUpdateUser))
		r.Delete("/users/{id}", s.withActor(s.handleDeleteUser))

		r.Post("/bookings", s.withActor(s.handleCreateBooking))
		r.Get("/bookings", s.withActor(s.handleListBookings))
		r.Get("/bookings/{id}", s.withActor(s.handleGetBooking))
		r.Patch("/bookings/{id}/time", s.withActor(s.handleEditBookingTime))
		r.Post("/bookings/{id}/status", s.withActor(s.handleSetBookingStatus))

		r.Get("/calendar", s.withActor(s.handleCalendar))

		r.Get("/notifications", s.withActor(s.handleNotifications))
		r.Post("/notifications/read", s.withActor(s.handleMarkNotificationsRead))

		r.Get("/export/bookings.{format}", s.withActor(s.handleExport))
		r.Post("/reports", s.withActor(s.handleReport))
	})

	return r
}

type actorHandler func(w http.ResponseWriter, r *http.Request, actor int64)

func (s *HTTPServer) withActor(h actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h(w, r, actor)
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	failed := make(map[string]string)
	for name, check := range s.svc.Health {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
