package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"clearTask/internal/app"
	"clearTask/internal/auth"
	"clearTask/internal/config"
	"clearTask/internal/logger"
	"clearTask/internal/service"

	"github.com/spf13/cobra"
)

var Version = "dev"

var errNotLoggedIn = errors.New("нет активной сессии, выполните `cleartask login`")

// env is the state shared by every command of one invocation.
type env struct {
	configPath string
	verbose    bool

	store   *service.TaskStore
	session *service.SessionService
	close   func()
}

func main() {
	e := newEnv()
	err := newRootCmd(e).Execute()
	e.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newEnv() *env {
	return &env{close: func() {}}
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cleartask",
		Short:         "ClearTask - personal task list",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&e.configPath, "config", "c", defaultConfigPath(), "path to config.yml")
	rootCmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "write logs to stderr")

	rootCmd.AddCommand(
		addCmd(e),
		listCmd(e),
		doneCmd(e),
		pinCmd(e),
		dupCmd(e),
		editCmd(e),
		rmCmd(e),
		statsCmd(e),
		loginCmd(e),
		logoutCmd(e),
		wipeCmd(e),
	)
	return rootCmd
}

func defaultConfigPath() string {
	if p := os.Getenv("CLEARTASK_CONFIG"); p != "" {
		return p
	}
	return "config.yml"
}

func (e *env) open(ctx context.Context, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}

	if e.verbose {
		if err := logger.Init(true); err != nil {
			return err
		}
	}

	storage, closeStorage, err := app.OpenStorage(ctx, cfg.Repository)
	if err != nil {
		return err
	}

	seeds, err := auth.LoadSeeds(cfg.Auth.UsersFile)
	if err != nil {
		closeStorage()
		return err
	}
	provider, err := auth.NewMockProvider(seeds)
	if err != nil {
		closeStorage()
		return err
	}

	notifier := &printer{w: stderr}
	e.store = service.NewTaskStore(storage, service.WithNotifier(notifier))
	e.session = service.NewSessionService(storage, provider, e.store, notifier)

	e.store.Load(ctx)
	e.session.Init(ctx)

	e.close = func() {
		closeStorage()
		logger.Sync()
	}
	return nil
}

func (e *env) requireSession() error {
	if !e.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
