package repository

import (
	"context"
	"errors"
)

// Keys of the documents kept in durable storage.
const (
	TasksKey = "ClearTask-tasks"
	UserKey  = "user"
	TokenKey = "token"
)

var ErrNotFound = errors.New("ключ не найден")
var ErrQuotaExceeded = errors.New("превышена квота хранилища")

// Storage is a durable key-value medium holding UTF-8 text values.
type Storage interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove of an absent key is not an error.
	Remove(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error
}
