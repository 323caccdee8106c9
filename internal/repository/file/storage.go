// Package file stores each key as its own file in a directory.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"clearTask/internal/logger"
	repo "clearTask/internal/repository"

	"go.uber.org/zap"
)

type Storage struct {
	dir string
	mtx sync.Mutex
}

func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}
	logger.Info("Repository: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{dir: dir}, nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("проверка каталога: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является каталогом", s.dir)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("чтение %s: %w", key, err)
	}
	return string(data), nil
}

// Set writes through a temp file and rename so a crash never leaves a torn
// document. Unchanged content is not rewritten.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	target := s.path(key)
	data := []byte(value)

	if existing, err := os.ReadFile(target); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("чтение %s: %w", key, err)
	}

	tmpFile, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("запись временного файла: %w", err)
	}

	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return fmt.Errorf("переименование файла: %w", err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("удаление %s: %w", key, err)
	}
	return nil
}
