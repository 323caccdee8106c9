package app

import (
	"context"
	"fmt"

	"clearTask/internal/config"
	"clearTask/internal/logger"
	"clearTask/internal/repository"
	"clearTask/internal/repository/file"
	"clearTask/internal/repository/inmemory"
	"clearTask/internal/repository/postgres"
	"clearTask/internal/repository/sqlite"

	"go.uber.org/zap"
)

// OpenStorage builds the durable backend named by cfg.Type. The returned
// close func is never nil.
func OpenStorage(ctx context.Context, cfg config.RepositoryConfig) (repository.Storage, func(), error) {
	logger.Info("App: Инициализация хранилища", zap.String("type", cfg.Type))

	switch cfg.Type {
	case config.RepoInMemory:
		return inmemory.NewStorage(cfg.MaxBytes), func() {}, nil

	case config.RepoFile:
		s, err := file.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.RepoSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("App: Ошибка закрытия SQLite", err)
			}
		}, nil

	case config.RepoPostgres:
		s, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Type)
	}
}
