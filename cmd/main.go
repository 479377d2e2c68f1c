package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/sunft-backend/internal/app"
	"github.com/yungbote/sunft-backend/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		config.Exitf("init app: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		application.Log.Error("server exited", "error", err)
		application.Close()
		os.Exit(1)
	}
	application.Log.Info("shutdown complete")
}
