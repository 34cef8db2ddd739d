package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/coursetrack-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, app.Options{})
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(ctx); err != nil {
		application.Log.Error("start worker", "error", err)
		return
	}
	application.Log.Info("progress worker running",
		"db_driver", application.Cfg.DB.Driver,
		"reconcile_schedule", application.Cfg.Progress.ReconcileSchedule,
		"metrics_enabled", application.Cfg.Metrics.Enabled,
	)

	<-ctx.Done()
	application.Log.Info("shutting down")
}
