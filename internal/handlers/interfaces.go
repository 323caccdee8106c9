package handlers

import (
	"context"

	"clearTask/internal/models/task"
	"clearTask/internal/models/user"
	"clearTask/internal/notify"
	"clearTask/internal/service"
)

type TaskStore interface {
	IsLoaded() bool
	InSync() bool
	Tasks() []task.Task
	Get(id string) (task.Task, bool)
	Stats() task.Stats
	Create(ctx context.Context, draft task.Draft) (task.Task, error)
	Duplicate(ctx context.Context, id string) (task.Task, bool)
	TogglePin(ctx context.Context, id string) (task.Task, bool)
	ToggleComplete(ctx context.Context, id string) (task.Task, bool)
	Update(ctx context.Context, id string, opts ...task.TaskOption) (task.Task, bool, error)
	Delete(ctx context.Context, id string) bool
}

type Session interface {
	IsLoading() bool
	IsAuthenticated() bool
	User() (user.User, bool)
	Login(ctx context.Context, email, password string) (user.User, error)
	Signup(ctx context.Context, email, password, name string) (user.User, error)
	Logout(ctx context.Context) error
	Delete(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (user.User, error)
}

type NotificationFeed interface {
	Since(seq uint64) []notify.Notification
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
