// Package main provides the entry point for the voice calendar application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/sosorry9853-png/Calendar/internal/app"
	"github.com/sosorry9853-png/Calendar/internal/calendar"
	"github.com/sosorry9853-png/Calendar/internal/config"
	"github.com/sosorry9853-png/Calendar/internal/infrastructure"
	"github.com/sosorry9853-png/Calendar/internal/server"
	"github.com/sosorry9853-png/Calendar/internal/voice"
	pkginfra "github.com/sosorry9853-png/Calendar/pkg/infrastructure"
)

func main() {
	// Default config path; override with the CALENDAR_CONFIG env var.
	configPath := "config.yaml"
	if path := os.Getenv("CALENDAR_CONFIG"); path != "" {
		configPath = path
	}

	application := app.New(
		// Core modules
		config.Module,
		infrastructure.LoggerModule,

		// Application modules
		calendar.Module,
		voice.Module,
		server.Module,

		// Supply the config path
		fx.Supply(configPath),

		// Configure Fx to use our Zap logger for its own internal logging
		fx.WithLogger(pkginfra.NewFxLoggerAdapter),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go application.Run()

	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	// Give the application 30 seconds to shut down gracefully.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	err := application.Stop(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Application has shut down gracefully.")
}
