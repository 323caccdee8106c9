package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"clearTask/internal/config"
	"clearTask/internal/handlers/dto"
	"clearTask/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(repoType string, dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Logging: config.LoggingConfig{Development: true},
		Repository: config.RepositoryConfig{
			Type:       repoType,
			Dir:        dir,
			SQLitePath: filepath.Join(dir, "cleartask.db"),
		},
		Worker: config.WorkerConfig{Enabled: false},
	}
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestApp_Flow тестирует сценарий от входа до удаления аккаунта
func TestApp_Flow(t *testing.T) {
	ctx := context.Background()
	a, err := New(testConfig(config.RepoInMemory, t.TempDir())).Init(ctx)
	require.NoError(t, err)
	defer a.Shutdown()

	h := a.Handler()

	// до загрузки клиент получает 503
	w := request(t, h, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	a.store.Load(ctx)
	a.session.Init(ctx)

	w = request(t, h, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, h, http.MethodPost, "/session/login", `{"email":"user1@gmail.com","password":"user"}`)
	require.Equal(t, http.StatusOK, w.Code)

	for _, body := range []string{
		`{"title":"Email Bob"}`,
		`{"title":"Call Bob","completed":true}`,
		`{"title":"Buy eggs","priority":"high"}`,
	} {
		w = request(t, h, http.MethodPost, "/tasks", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = request(t, h, http.MethodGet, "/tasks?search=bob&filter=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TaskListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Email Bob", list.Tasks[0].Title)
	assert.Equal(t, 3, list.Stats.Total)

	w = request(t, h, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	var notes dto.NotificationsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&notes))
	assert.Len(t, notes.Notifications, 4)

	w = request(t, h, http.MethodDelete, "/session", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Empty(t, a.store.Tasks())
	_, err = a.storage.Get(ctx, repository.TasksKey)
	assert.Equal(t, repository.ErrNotFound, err)

	w = request(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestApp_FilePersistence тестирует восстановление задач после перезапуска
func TestApp_FilePersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, repoType := range []string{config.RepoFile, config.RepoSQLite} {
		t.Run(repoType, func(t *testing.T) {
			first, err := New(testConfig(repoType, dir)).Init(ctx)
			require.NoError(t, err)
			first.store.Load(ctx)
			first.session.Init(ctx)

			_, err = first.session.Login(ctx, "user2@gmail.com", "user")
			require.NoError(t, err)
			w := request(t, first.Handler(), http.MethodPost, "/tasks", `{"title":"Survive restart"}`)
			require.Equal(t, http.StatusCreated, w.Code)
			first.Shutdown()

			second, err := New(testConfig(repoType, dir)).Init(ctx)
			require.NoError(t, err)
			defer second.Shutdown()
			second.store.Load(ctx)
			second.session.Init(ctx)

			assert.True(t, second.session.IsAuthenticated())
			tasks := second.store.Tasks()
			require.NotEmpty(t, tasks)
			assert.Equal(t, "Survive restart", tasks[0].Title)
		})
	}
}

// TestApp_Run тестирует запуск и остановку
func TestApp_Run(t *testing.T) {
	cfg := testConfig(config.RepoInMemory, t.TempDir())
	cfg.Worker = config.WorkerConfig{Enabled: true, Interval: 10 * time.Millisecond}

	a, err := New(cfg).Init(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, a.loaded, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestOpenStorage_Unknown(t *testing.T) {
	_, _, err := OpenStorage(context.Background(), config.RepositoryConfig{Type: "redis"})
	assert.Error(t, err)
}
