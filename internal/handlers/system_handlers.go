package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"clearTask/internal/handlers/dto"
	"clearTask/internal/logger"

	"go.uber.org/zap"
)

const serviceName = "cleartask"

type NotificationHandler struct {
	Feed NotificationFeed
}

func NewNotificationHandler(feed NotificationFeed) NotificationHandler {
	return NotificationHandler{Feed: feed}
}

// List serves GET /notifications?since=N
func (s *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			logger.Warn("HTTP: Ошибка получения параметра",
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "не удалось получить значение since: "+err.Error())
			return
		}
		since = parsed
	}

	items := s.Feed.Since(since)
	last := since
	if len(items) > 0 {
		last = items[len(items)-1].Seq
	}
	responseWithData(w, http.StatusOK, dto.NotificationsResponse{Notifications: items, Last: last})
}

type HealthHandler struct {
	Storage HealthChecker
	Store   TaskStore
	timeout time.Duration
}

func NewHealthHandler(storage HealthChecker, store TaskStore) HealthHandler {
	return HealthHandler{Storage: storage, Store: store, timeout: 2 * time.Second}
}

func (s *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.Storage.HealthCheck(ctx); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unhealthy"),
			toPayload("service", serviceName),
			toPayload("error", err.Error()),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "healthy"),
		toPayload("service", serviceName),
		toPayload("loaded", s.Store.IsLoaded()),
		toPayload("in_sync", s.Store.InSync()),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)),
	)
}
