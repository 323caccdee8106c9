package middleware

import (
	"encoding/json"
	"net/http"

	"clearTask/internal/logger"

	"go.uber.org/zap"
)

// RequireLoaded answers 503 until loaded reports true, so clients never
// see an empty list before the initial read completes.
func RequireLoaded(loaded func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !loaded() {
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusServiceUnavailable, "loading", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession answers 401 unless a profile is logged in.
func RequireSession(authenticated func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticated() {
				logger.Warn("HTTP: Запрос без сессии",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, r, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string, extra map[string]any) {
	body := map[string]any{
		"error":      msg,
		"request_id": GetRequestID(r.Context()),
	}
	for k, v := range extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: Ошибка записи ответа", err)
	}
}
