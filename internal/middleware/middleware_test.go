package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clearTask/internal/logger"
	"clearTask/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// TestRequestID тестирует проброс идентификатора запроса
func TestRequestID(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", w.Header().Get("X-Request-ID"))
}

// TestLogging тестирует уровни логирования по статусу ответа
func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "ok", status: http.StatusOK, wantLevel: zap.InfoLevel},
		{name: "client error", status: http.StatusNotFound, wantLevel: zap.WarnLevel},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: zap.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			logger.Set(zap.New(core))
			defer logger.Set(nil)

			h := middleware.RequestID(middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))

			out := logs.FilterMessage("HTTP_OUT: Завершение запроса").All()
			require.Len(t, out, 1)
			assert.Equal(t, tt.wantLevel, out[0].Level)
			assert.Equal(t, int64(tt.status), out[0].ContextMap()["status"])
		})
	}
}

// TestRateLimit тестирует ограничение частоты запросов
func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2)(okHandler())

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	first := call("10.0.0.1:1000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001").Code)

	limited := call("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	// другой клиент не затронут
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := middleware.RateLimit(0)(okHandler())
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// TestRequireLoaded тестирует ответ 503 до загрузки
func TestRequireLoaded(t *testing.T) {
	loaded := false
	h := middleware.RequireLoaded(func() bool { return loaded })(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "loading", body["error"])

	loaded = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRequireSession тестирует доступ без сессии
func TestRequireSession(t *testing.T) {
	authenticated := false
	h := middleware.RequireSession(func() bool { return authenticated })(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	authenticated = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
