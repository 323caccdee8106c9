// Package notify carries transient user-facing messages (the "toasts") from
// the services to whatever UI is driving them.
package notify

import (
	"sync"
	"time"

	"clearTask/internal/logger"

	"go.uber.org/zap"
)

type Level string

const LevelSuccess Level = "success"
const LevelError Level = "error"

type Notification struct {
	Seq     uint64    `json:"seq"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Feed keeps the most recent notifications for polling clients.
type Feed struct {
	mtx   sync.Mutex
	items []Notification
	size  int
	seq   uint64
	now   func() time.Time
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size, now: time.Now}
}

func (f *Feed) Success(msg string) { f.push(LevelSuccess, msg) }
func (f *Feed) Error(msg string)   { f.push(LevelError, msg) }

func (f *Feed) push(level Level, msg string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.seq++
	f.items = append(f.items, Notification{Seq: f.seq, Level: level, Message: msg, At: f.now().UTC()})
	if len(f.items) > f.size {
		f.items = f.items[len(f.items)-f.size:]
	}
}

// Since returns notifications with Seq > seq, oldest first.
func (f *Feed) Since(seq uint64) []Notification {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	res := []Notification{}
	for _, n := range f.items {
		if n.Seq > seq {
			res = append(res, n)
		}
	}
	return res
}

// Log writes notifications to the application log.
type Log struct{}

func (Log) Success(msg string) {
	logger.Info("Notify: "+msg, zap.String("level", string(LevelSuccess)))
}

func (Log) Error(msg string) {
	logger.Warn("Notify: "+msg, zap.String("level", string(LevelError)))
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
