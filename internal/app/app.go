package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clearTask/internal/auth"
	"clearTask/internal/config"
	"clearTask/internal/handlers"
	"clearTask/internal/logger"
	"clearTask/internal/middleware"
	"clearTask/internal/notify"
	"clearTask/internal/repository"
	"clearTask/internal/service"
	"clearTask/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const feedSize = 100

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	storage   repository.Storage
	store     *service.TaskStore
	session   *service.SessionService
	feed      *notify.Feed
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	storage, closeStorage, err := OpenStorage(ctx, a.config.Repository)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		closeStorage()
	})

	seeds, err := auth.LoadSeeds(a.config.Auth.UsersFile)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("загрузка пользователей: %w", err)
	}
	provider, err := auth.NewMockProvider(seeds)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация авторизации: %w", err)
	}

	a.feed = notify.NewFeed(feedSize)
	notifier := notify.Multi{a.feed, notify.Log{}}

	a.store = service.NewTaskStore(storage, service.WithNotifier(notifier))
	a.session = service.NewSessionService(storage, provider, a.store, notifier)

	if a.config.Worker.Enabled {
		interval := a.config.Worker.Interval
		a.worker = worker.NewOverdueWorker(a.store, notifier, &interval)
	}

	a.setupRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "cleartask"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	routes := handlers.Router{
		Tasks:         handlers.NewTaskHandler(a.store),
		Sessions:      handlers.NewSessionHandler(a.session),
		Notifications: handlers.NewNotificationHandler(a.feed),
		Health:        handlers.NewHealthHandler(a.storage, a.store),
		Loaded:        a.loaded,
		Authenticated: a.session.IsAuthenticated,
	}
	routes.Mount(r)

	a.router = r
}

func (a *App) loaded() bool {
	return a.store.IsLoaded() && !a.session.IsLoading()
}

// Handler exposes the instrumented router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run loads persisted state, serves HTTP and runs the worker until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.store.Load(gctx)
		a.session.Init(gctx)
		logger.Info("App: Состояние загружено", zap.Bool("in_sync", a.store.InSync()))
		return nil
	})

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown releases resources in reverse order of acquisition.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
