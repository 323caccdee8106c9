package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clearTask/internal/logger"
	"clearTask/internal/models/task"
	"clearTask/internal/notify"

	"go.uber.org/zap"
)

type TaskSource interface {
	IsLoaded() bool
	Tasks() []task.Task
}

// OverdueWorker periodically reminds about incomplete tasks past their due
// date. Each task is reminded once per process.
type OverdueWorker struct {
	tasks    TaskSource
	notifier notify.Notifier
	interval time.Duration
	now      func() time.Time

	mtx      sync.Mutex
	reminded map[string]struct{}
}

func NewOverdueWorker(tasks TaskSource, notifier notify.Notifier, interval *time.Duration) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = time.Minute
	} else {
		intervalToSet = *interval
	}

	return &OverdueWorker{
		tasks:    tasks,
		notifier: notifier,
		interval: intervalToSet,
		now:      time.Now,
		reminded: make(map[string]struct{}),
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Debug("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check sends a reminder for every newly overdue task and returns how many
// were sent.
func (w *OverdueWorker) Check(ctx context.Context) int {
	if !w.tasks.IsLoaded() {
		return 0
	}
	start := time.Now()

	tasks := w.tasks.Tasks()
	now := w.now()

	w.mtx.Lock()
	defer w.mtx.Unlock()

	overdueCount := 0
	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		if !t.Overdue(now) {
			continue
		}
		if _, ok := w.reminded[t.ID]; ok {
			continue
		}

		w.reminded[t.ID] = struct{}{}
		w.notifier.Error(reminder(t))
		overdueCount++
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", overdueCount),
	)
	return overdueCount
}

func reminder(t task.Task) string {
	return fmt.Sprintf("Task %q is overdue (due %s)", t.Title, t.DueDate.Local().Format("Jan 2, 2006 15:04"))
}
