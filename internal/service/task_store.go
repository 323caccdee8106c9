package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"clearTask/internal/logger"
	"clearTask/internal/models/task"
	"clearTask/internal/notify"
	"clearTask/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messages shown to the user.
const (
	MsgCreated    = "Task created successfully!"
	MsgDuplicated = "Duplicate Task created..."
	MsgUpdated    = "Task updated"
	MsgDeleted    = "Task deleted successfully!"
	MsgPinned     = "Task pinned"
	MsgUnpinned   = "Task unpinned"
	MsgCompleted  = "Task marked as completed"
	MsgReopened   = "Task marked as pending"
	MsgNotSaved   = "Tasks were not saved. Please try again later."
)

const (
	copySuffix         = " (Copy)"
	errTitleRequired   = "название не может быть пустым"
	errUnknownPriority = "допустимо low, medium или high"
)

// TaskStore owns the task collection. Every successful mutation is mirrored to
// durable storage as a full rewrite of the collection; write failures are
// reported through the notifier and never roll back the in-memory state.
//
// Operations are serialized: one runs to completion, persistence included,
// before the next starts.
type TaskStore struct {
	mtx      sync.RWMutex
	tasks    []task.Task
	storage  repository.Storage
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string

	loaded  bool
	inSync  bool
	lastErr error
}

type StoreOption func(*TaskStore)

func WithNotifier(n notify.Notifier) StoreOption {
	return func(s *TaskStore) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *TaskStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *TaskStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewTaskStore(storage repository.Storage, opts ...StoreOption) *TaskStore {
	s := &TaskStore{
		tasks:    []task.Task{},
		storage:  storage,
		notifier: notify.Discard{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection. A missing, unreadable or malformed
// document leaves the store empty; it never fails. Persistence starts only
// once Load has run, and Load replaces whatever was in memory before it.
func (s *TaskStore) Load(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.loaded {
		return
	}
	defer func() { s.loaded = true }()

	s.tasks = []task.Task{}
	s.inSync = false

	raw, err := s.storage.Get(ctx, repository.TasksKey)
	if errors.Is(err, repository.ErrNotFound) {
		s.inSync = true
		logger.Info("Store: Сохранённых задач нет")
		return
	}
	if err != nil {
		logger.Warn("Store: Не удалось прочитать задачи", zap.Error(err))
		return
	}

	tasks, dropped, err := task.DecodeList([]byte(raw))
	if err != nil {
		logger.Warn("Store: Сохранённые задачи повреждены, начинаем с пустого списка", zap.Error(err))
		return
	}
	if dropped > 0 {
		logger.Warn("Store: Пропущены некорректные записи", zap.Int("dropped", dropped))
	}

	s.tasks = tasks
	s.inSync = dropped == 0
	logger.Info("Store: Задачи загружены", zap.Int("count", len(tasks)))
}

func (s *TaskStore) IsLoaded() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.loaded
}

// InSync reports whether the durable copy matches memory.
func (s *TaskStore) InSync() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.inSync
}

func (s *TaskStore) LastPersistError() error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.lastErr
}

// Tasks returns a copy of the collection in storage order (newest first).
func (s *TaskStore) Tasks() []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		res[i] = t.Clone()
	}
	return res
}

func (s *TaskStore) Get(id string) (task.Task, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *TaskStore) Stats() task.Stats {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return task.Count(s.tasks)
}

// Create inserts a new task at the front of the collection. Blank titles and
// unknown priorities are rejected with a validation error.
func (s *TaskStore) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return task.Task{}, NewValidationError("title", errTitleRequired)
	}
	priority := draft.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	if !priority.Valid() {
		return task.Task{}, NewValidationError("priority", errUnknownPriority)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.stamp()
	created := task.Task{
		ID:          s.uniqueID(),
		Title:       title,
		Description: draft.Description,
		Completed:   draft.Completed,
		Priority:    priority,
		Pinned:      draft.Pinned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if draft.DueDate != nil {
		due := task.Stamp(*draft.DueDate)
		created.DueDate = &due
	}
	created = created.Clone()

	s.tasks = append([]task.Task{created}, s.tasks...)
	logger.Info("Store: Задача создана", zap.String("task_id", created.ID))
	s.notifier.Success(MsgCreated)
	s.persist(ctx)

	return created.Clone(), nil
}

// Duplicate copies the task with a fresh id and timestamps, cleared
// completed/pinned flags and a " (Copy)" title suffix.
func (s *TaskStore) Duplicate(ctx context.Context, id string) (task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.miss("duplicate", id)
		return task.Task{}, false
	}

	now := s.stamp()
	dup := s.tasks[i].Clone()
	dup.ID = s.uniqueID()
	dup.Title += copySuffix
	dup.Completed = false
	dup.Pinned = false
	dup.CreatedAt = now
	dup.UpdatedAt = now

	s.tasks = append([]task.Task{dup}, s.tasks...)
	logger.Info("Store: Задача скопирована", zap.String("task_id", id), zap.String("copy_id", dup.ID))
	s.notifier.Success(MsgDuplicated)
	s.persist(ctx)

	return dup.Clone(), true
}

func (s *TaskStore) TogglePin(ctx context.Context, id string) (task.Task, bool) {
	return s.toggle(ctx, "toggle_pin", id, func(t *task.Task) string {
		t.Pinned = !t.Pinned
		if t.Pinned {
			return MsgPinned
		}
		return MsgUnpinned
	})
}

func (s *TaskStore) ToggleComplete(ctx context.Context, id string) (task.Task, bool) {
	return s.toggle(ctx, "toggle_complete", id, func(t *task.Task) string {
		t.Completed = !t.Completed
		if t.Completed {
			return MsgCompleted
		}
		return MsgReopened
	})
}

func (s *TaskStore) toggle(ctx context.Context, op, id string, flip func(*task.Task) string) (task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.miss(op, id)
		return task.Task{}, false
	}

	msg := flip(&s.tasks[i])
	s.touch(&s.tasks[i])
	logger.Info("Store: Задача изменена", zap.String("operation", op), zap.String("task_id", id))
	s.notifier.Success(msg)
	s.persist(ctx)

	return s.tasks[i].Clone(), true
}

// Update merges opts into the task. id and createdAt cannot be changed; an
// update that blanks the title or sets an unknown priority is rejected.
func (s *TaskStore) Update(ctx context.Context, id string, opts ...task.TaskOption) (task.Task, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.miss("update", id)
		return task.Task{}, false, nil
	}

	candidate := s.tasks[i].Clone()
	task.Apply(&candidate, opts...)
	candidate.ID = s.tasks[i].ID
	candidate.CreatedAt = s.tasks[i].CreatedAt
	candidate.UpdatedAt = s.tasks[i].UpdatedAt

	if strings.TrimSpace(candidate.Title) == "" {
		return task.Task{}, true, NewValidationError("title", errTitleRequired)
	}
	if !candidate.Priority.Valid() {
		return task.Task{}, true, NewValidationError("priority", errUnknownPriority)
	}

	s.touch(&candidate)
	s.tasks[i] = candidate
	logger.Info("Store: Задача обновлена", zap.String("task_id", id))
	s.notifier.Success(MsgUpdated)
	s.persist(ctx)

	return candidate.Clone(), true, nil
}

// Delete removes the task permanently.
func (s *TaskStore) Delete(ctx context.Context, id string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.miss("delete", id)
		return false
	}

	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	logger.Info("Store: Задача удалена", zap.String("task_id", id))
	s.notifier.Success(MsgDeleted)
	s.persist(ctx)

	return true
}

// Wipe erases every task, in durable storage first and then in memory. When
// the storage refuses, nothing is erased. Only account deletion calls it.
func (s *TaskStore) Wipe(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.storage.Remove(ctx, repository.TasksKey); err != nil {
		s.lastErr = err
		logger.Error("Store: Не удалось удалить задачи из хранилища", err)
		return NewStorageError("wipe", err)
	}
	s.tasks = []task.Task{}
	s.inSync = true
	s.lastErr = nil
	logger.Info("Store: Все задачи удалены")
	return nil
}

func (s *TaskStore) persist(ctx context.Context) {
	if !s.loaded {
		return
	}

	data, err := task.EncodeList(s.tasks)
	if err == nil {
		err = s.storage.Set(ctx, repository.TasksKey, string(data))
	}
	if err != nil {
		s.inSync = false
		s.lastErr = err
		logger.Error("Store: Не удалось сохранить задачи", err, zap.Int("count", len(s.tasks)))
		s.notifier.Error(MsgNotSaved)
		return
	}

	s.inSync = true
	s.lastErr = nil
}

func (s *TaskStore) miss(op, id string) {
	logger.Debug("Store: Задача не найдена", zap.String("operation", op), zap.String("target_id", id))
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) uniqueID() string {
	id := s.newID()
	for id == "" || s.indexOf(id) >= 0 {
		id = s.newID()
	}
	return id
}

func (s *TaskStore) stamp() time.Time {
	return task.Stamp(s.now())
}

// touch refreshes updatedAt without ever moving it backwards.
func (s *TaskStore) touch(t *task.Task) {
	now := s.stamp()
	if now.Before(t.UpdatedAt) {
		now = t.UpdatedAt
	}
	t.UpdatedAt = now
}
