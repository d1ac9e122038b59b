// Package api exposes the matchmaker over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "pet-matchmaker/internal/common/errors"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/common/metrics"
	"pet-matchmaker/internal/common/observability"
	"pet-matchmaker/internal/common/validation"
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/models"
)

const (
	DefaultUserHeader = "X-User-ID"
	maxBodyBytes      = 1 << 20
)

type ChatService interface {
	HandleChatTurn(ctx context.Context, userID string, msg conversation.Message, prior []models.TranscriptEntry) (*conversation.TurnResult, error)
	FindMatches(ctx context.Context, userID string, raw map[string]interface{}) ([]models.MatchResult, error)
}

type CareAdvisor interface {
	GenerateCareAdvice(ctx context.Context, petType, specificNeeds string) []string
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	UserHeader   string
	ReadyTimeout time.Duration
}

type Server struct {
	config  Config
	chat    ChatService
	advisor CareAdvisor
	checks  map[string]Pinger
	obs     *observability.Observability
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewServer(config Config, chat ChatService, advisor CareAdvisor, checks map[string]Pinger, obs *observability.Observability, log logger.Logger) *Server {
	if config.UserHeader == "" {
		config.UserHeader = DefaultUserHeader
	}
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = 2 * time.Second
	}
	l := logger.ForComponent(log, "api")
	return &Server{
		config:  config,
		chat:    chat,
		advisor: advisor,
		checks:  checks,
		obs:     obs,
		errors:  apperrors.NewErrorHandler(l),
		logger:  l,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/ai", func(r chi.Router) {
		r.Get("/greeting", s.handleGreeting)
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/chat", s.handleChat)
			r.Post("/match", s.handleMatch)
		})
		r.Post("/care-advice", s.handleCareAdvice)
	})
	return r
}

type userKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(s.config.UserHeader)
		if userID == "" {
			s.errors.WriteError(w, r, apperrors.NewUnauthenticatedError("missing "+s.config.UserHeader+" header"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

func userFrom(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusText := strconv.Itoa(status)

		metrics.HTTPRequests.WithLabelValues(route, statusText).Inc()
		s.obs.RecordRequest(r.Context(), route, statusText, time.Since(start))
	})
}

// decode validates the body against schema before unmarshalling into out.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema *validation.Schema, out interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.errors.WriteError(w, r, apperrors.NewInvalidRequestError("unreadable body"))
		return false
	}
	if err := schema.Decode(body, out); err != nil {
		s.errors.WriteError(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
