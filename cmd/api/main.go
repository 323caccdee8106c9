package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clearTask/internal/app"
	"clearTask/internal/config"
)

func main() {
	configPath := os.Getenv("CLEARTASK_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "конфигурация:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "запуск:", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "остановка с ошибкой:", err)
		os.Exit(1)
	}
}
