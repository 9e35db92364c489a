package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sureshk/appointment_api/internal/auth"
	"github.com/sureshk/appointment_api/internal/model"
	"github.com/sureshk/appointment_api/internal/service"
)

// Server — HTTP-граница поверх сервисов. Сам ничего не решает:
// извлекает личность из токена, вызывает сервис и переводит
// доменные ошибки в коды ответов.
type Server struct {
	authService        *service.AuthService
	reservationService *service.ReservationService
	jwtSecret          string
	limiter            *LimiterStore
	logger             *zap.Logger
}

func NewServer(
	authService *service.AuthService,
	reservationService *service.ReservationService,
	jwtSecret string,
	limiter *LimiterStore,
	logger *zap.Logger,
) *Server {
	return &Server{
		authService:        authService,
		reservationService: reservationService,
		jwtSecret:          jwtSecret,
		limiter:            limiter,
		logger:             logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if s.limiter != nil {
		r.Use(s.rateLimitMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth", s.handleLogin)

	r.With(s.authMiddleware).Post("/availability", s.handlePublishAvailability)
	r.With(s.authMiddleware).Get("/availability/{professorId}", s.handleListAvailability)
	r.With(s.authMiddleware).Post("/appointments", s.handleBookAppointment)
	r.With(s.authMiddleware).Delete("/appointments/{appointmentId}", s.handleCancelAppointment)
	r.With(s.authMiddleware).Get("/appointments", s.handleListAppointments)

	return r
}

// Auth

type actorKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			s.writeServiceError(w, service.ErrUnauthenticated)
			return
		}

		claims, err := auth.ParseToken(s.jwtSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		actor := model.Actor{ID: claims.UserID, Role: model.Role(claims.Role)}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) model.Actor {
	actor, _ := ctx.Value(actorKey{}).(model.Actor)
	return actor
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	// Принимаем и голый токен, и схему Bearer
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError переводит доменную ошибку в код ответа.
// Таксономия не схлопывается: вызывающему нужно отличать
// "запрещено" от "не найдено" и от "слот занят".
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "missing_token")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, service.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable")
	case errors.Is(err, service.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
	default:
		s.logger.Error("Unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
