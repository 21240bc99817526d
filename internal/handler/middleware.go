package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const callerKey ctxKey = iota

// RequestLogger: middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Authenticate проверяет bearer-токен и кладёт вызывающего в контекст запроса.
func Authenticate(authUC usecase.AuthUseCase, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractTokenFromBearer(r)
			if err != nil {
				respondWithAppError(w, r, domain.NewError(domain.ErrUnauthenticated, "not authorized to access this route"), logger)
				return
			}

			caller, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				respondWithAppError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

// AdminOnly пропускает дальше только администраторов. Ставится после Authenticate.
func AdminOnly(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, _ := CallerFrom(r.Context())
			if err := usecase.RequireAdmin(caller); err != nil {
				respondWithAppError(w, r, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, &caller)
}

// CallerFrom возвращает вызывающего, определённого Authenticate.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(*domain.Caller)
	if !ok || c == nil {
		return domain.Caller{}, false
	}
	return *c, true
}
