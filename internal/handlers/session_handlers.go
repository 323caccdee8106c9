package handlers

import (
	"net/http"
	"time"

	"clearTask/internal/handlers/dto"
	"clearTask/internal/logger"
	"clearTask/internal/service"

	"go.uber.org/zap"
)

type SessionHandler struct {
	Session Session
}

func NewSessionHandler(session Session) SessionHandler {
	return SessionHandler{Session: session}
}

func (s *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	responseWithData(w, http.StatusOK, s.state())
}

func (s *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := s.Session.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, s.state())
}

func (s *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SignupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := s.Session.Signup(r.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		handleError(w, r, err, "signup")
		return
	}

	responseWithJSON(w, http.StatusCreated,
		toPayload("user", dto.FromUser(u)),
		toPayload("message", service.MsgSignedUp),
	)
}

func (s *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.Session.Logout(r.Context()); err != nil {
		handleError(w, r, err, "logout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount logs out and erases all tasks.
func (s *SessionHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.Session.Delete(r.Context()); err != nil {
		handleError(w, r, err, "delete_account")
		return
	}

	logger.Info("HTTP_OUT: Аккаунт удалён", zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (s *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ProfileRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := s.Session.UpdateProfile(r.Context(), service.ProfileUpdate{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		handleError(w, r, err, "update_profile")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromUser(u))
}

func (s *SessionHandler) state() dto.SessionResponse {
	resp := dto.SessionResponse{
		Authenticated: s.Session.IsAuthenticated(),
		Loading:       s.Session.IsLoading(),
	}
	if u, ok := s.Session.User(); ok {
		resp.User = dto.FromUser(u)
	}
	return resp
}
