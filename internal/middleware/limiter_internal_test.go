package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLimiter_Take(t *testing.T) {
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	l := newLimiter(2, time.Minute)

	remaining, _, ok := l.take("a", start)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	_, _, ok = l.take("a", start.Add(time.Second))
	assert.True(t, ok)

	remaining, resetAt, ok := l.take("a", start.Add(2*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(time.Minute), resetAt)

	// новое окно
	remaining, _, ok = l.take("a", start.Add(61*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

// TestLimiter_Sweep тестирует удаление устаревших окон
func TestLimiter_Sweep(t *testing.T) {
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	l := newLimiter(5, time.Minute)

	l.take("a", start)
	l.take("b", start)
	assert.Len(t, l.clients, 2)

	l.take("c", start.Add(2*time.Minute))
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "c")
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zap.InfoLevel, levelFor(http.StatusNoContent))
	assert.Equal(t, zap.WarnLevel, levelFor(http.StatusUnauthorized))
	assert.Equal(t, zap.ErrorLevel, levelFor(http.StatusServiceUnavailable))
}
