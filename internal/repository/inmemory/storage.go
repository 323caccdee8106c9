package inmemory

import (
	"context"
	"sync"

	"clearTask/internal/logger"
	repo "clearTask/internal/repository"

	"go.uber.org/zap"
)

// Storage keeps values in process memory. With maxBytes > 0 it behaves like a
// browser quota: a Set that would exceed the budget fails with ErrQuotaExceeded.
type Storage struct {
	storage  map[string]string
	mtx      *sync.RWMutex
	maxBytes int
	used     int
}

func NewStorage(maxBytes int) *Storage {
	return &Storage{
		storage:  make(map[string]string),
		mtx:      &sync.RWMutex{},
		maxBytes: maxBytes,
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	used := s.used - s.sizeOf(key) + len(key) + len(value)
	if s.maxBytes > 0 && used > s.maxBytes {
		logger.Warn("Repository: Превышена квота",
			zap.String("key", key),
			zap.Int("max_bytes", s.maxBytes),
			zap.Int("required", used))
		return repo.ErrQuotaExceeded
	}

	s.storage[key] = value
	s.used = used
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.used -= s.sizeOf(key)
	delete(s.storage, key)
	return nil
}

// Used reports the bytes currently counted against the quota.
func (s *Storage) Used() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.used
}

func (s *Storage) sizeOf(key string) int {
	value, ok := s.storage[key]
	if !ok {
		return 0
	}
	return len(key) + len(value)
}
