package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"clearTask/internal/auth"
	"clearTask/internal/logger"
	"clearTask/internal/models/user"
	"clearTask/internal/notify"
	"clearTask/internal/repository"

	"go.uber.org/zap"
)

const (
	MsgLoggedIn       = "Logged in successfully!"
	MsgSignedUp       = "Please check your email for verification"
	MsgProfileUpdated = "Your Profile Updated"
)

// AuthProvider checks and manages credentials. The session never sees or
// stores a password beyond passing it through.
type AuthProvider interface {
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
	Register(ctx context.Context, email, password, name string) (*user.User, error)
	ChangePassword(ctx context.Context, id int64, password string) error
	UpdateProfile(ctx context.Context, id int64, email, name string) (*user.User, error)
}

// TaskWiper erases the task collection on account deletion.
type TaskWiper interface {
	Wipe(ctx context.Context) error
}

type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// SessionService is the only owner of the session keys in durable storage.
type SessionService struct {
	mtx      sync.RWMutex
	storage  repository.Storage
	auth     AuthProvider
	tasks    TaskWiper
	notifier notify.Notifier

	current *user.User
	loading bool
}

func NewSessionService(storage repository.Storage, provider AuthProvider, tasks TaskWiper, notifier notify.Notifier) *SessionService {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &SessionService{
		storage:  storage,
		auth:     provider,
		tasks:    tasks,
		notifier: notifier,
		loading:  true,
	}
}

// Init restores the persisted profile. A malformed document is removed and
// the session starts unauthenticated.
func (s *SessionService) Init(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	defer func() { s.loading = false }()

	raw, err := s.storage.Get(ctx, repository.UserKey)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Warn("Session: Не удалось прочитать профиль", zap.Error(err))
		return
	}

	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Email == "" {
		logger.Warn("Session: Профиль повреждён, удаляем", zap.Error(err))
		if err := s.storage.Remove(ctx, repository.UserKey); err != nil {
			logger.Error("Session: Не удалось удалить профиль", err)
		}
		return
	}

	s.current = &u
	logger.Info("Session: Профиль восстановлен", zap.Int64("user_id", u.ID))
}

func (s *SessionService) IsLoading() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.loading
}

func (s *SessionService) IsAuthenticated() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.current != nil
}

func (s *SessionService) User() (user.User, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.current == nil {
		return user.User{}, false
	}
	return *s.current, true
}

func (s *SessionService) Login(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		logger.Warn("Session: Неудачная попытка входа", zap.Error(err))
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return user.User{}, NewUnauthorized("Invalid credentials. Please try again.")
		}
		return user.User{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.save(ctx, u); err != nil {
		return user.User{}, err
	}
	s.current = u
	logger.Info("Session: Вход выполнен", zap.Int64("user_id", u.ID))
	s.notifier.Success(MsgLoggedIn)
	return *u, nil
}

// Signup registers an account. It does not start a session.
func (s *SessionService) Signup(ctx context.Context, email, password, name string) (user.User, error) {
	u, err := s.auth.Register(ctx, email, password, name)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return user.User{}, NewBusinessError(CodeEmailTaken, "email already exists", ToDetail("email", email))
	case errors.Is(err, auth.ErrInvalidInput):
		return user.User{}, NewValidationError("email", err.Error())
	case err != nil:
		return user.User{}, err
	}

	logger.Info("Session: Регистрация выполнена", zap.Int64("user_id", u.ID))
	s.notifier.Success(MsgSignedUp)
	return *u, nil
}

// Logout clears the session keys only.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.clear(ctx)
}

// Delete erases every task and then logs out. It cannot be undone. If the
// tasks cannot be erased the session stays open so the call can be retried.
func (s *SessionService) Delete(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.tasks.Wipe(ctx); err != nil {
		logger.Warn("Session: Удаление аккаунта прервано", zap.Error(err))
		return err
	}
	if err := s.clear(ctx); err != nil {
		return err
	}
	logger.Info("Session: Аккаунт удалён вместе с задачами")
	return nil
}

func (s *SessionService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (user.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.current == nil {
		return user.User{}, NewUnauthorized("требуется вход")
	}

	u, err := s.auth.UpdateProfile(ctx, s.current.ID, upd.Email, upd.Name)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return user.User{}, NewBusinessError(CodeEmailTaken, "email already exists", ToDetail("email", upd.Email))
	case errors.Is(err, auth.ErrUnknownUser):
		return user.User{}, NewNotFound("user", s.current.Email)
	case err != nil:
		return user.User{}, err
	}

	if upd.Password != "" {
		if err := s.auth.ChangePassword(ctx, u.ID, upd.Password); err != nil {
			return user.User{}, err
		}
	}

	if err := s.save(ctx, u); err != nil {
		return user.User{}, err
	}
	s.current = u
	s.notifier.Success(MsgProfileUpdated)
	return *u, nil
}

// SetToken stores the advisory credential of a third-party login.
func (s *SessionService) SetToken(ctx context.Context, token string) error {
	if err := s.storage.Set(ctx, repository.TokenKey, token); err != nil {
		logger.Error("Session: Не удалось сохранить токен", err)
		return NewStorageError("set_token", err)
	}
	return nil
}

func (s *SessionService) save(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err == nil {
		err = s.storage.Set(ctx, repository.UserKey, string(data))
	}
	if err != nil {
		logger.Error("Session: Не удалось сохранить профиль", err)
		return NewStorageError("save_user", err)
	}
	return nil
}

func (s *SessionService) clear(ctx context.Context) error {
	s.current = nil
	for _, key := range []string{repository.UserKey, repository.TokenKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			logger.Error("Session: Не удалось удалить ключ", err, zap.String("key", key))
			return NewStorageError("logout", err)
		}
	}
	logger.Info("Session: Выход выполнен")
	return nil
}
