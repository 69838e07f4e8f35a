package main

import (
	"context"
	"fmt"
	"os"

	"github.com/SyedHasanCronosPMC/StudySync/internal/app"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	a, err := app.New()
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := a.Start(); err != nil {
		return err
	}
	if err := a.Run(ctx); err != nil {
		return err
	}
	a.Log.Info("server stopped")
	return nil
}
