package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"csvclean/adapters/postgres"
	"csvclean/app"
	"csvclean/internal"
	"csvclean/internal/config"
	"csvclean/internal/errors"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := run(); err != nil {
		if errors.IsAppError(err) {
			log.Fatalf("Data cleaning failed [%s]: %v", errors.GetCode(err), err)
		}
		log.Fatalf("Data cleaning failed: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Runtime.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.OptionsFromConfig(appConfig)
	opts.Logger = logger

	// Optional database copy of every cleaned table
	if appConfig.Database.URL != "" {
		db, err := postgres.Connect(ctx, appConfig.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Sink = postgres.NewTableSink(db, appConfig.Database.TablePrefix, logger)
	}

	service, err := app.NewCleaningService(opts)
	if err != nil {
		return err
	}

	summary, err := service.Run(ctx, appConfig.Jobs)
	if err != nil {
		return err
	}

	written := 0
	for _, job := range summary.Jobs {
		if job.Written {
			written++
		}
	}
	fmt.Printf("Data cleaning complete: %d table(s) processed, %d written (run %s)\n",
		len(summary.Jobs), written, summary.RunID)
	return nil
}
