package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yungbote/themescore-backend/internal/app"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/shutdown"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, app.Options{ServiceName: "themescore-api"})
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
	defer a.Close()

	if a.Cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	a.Log.Info("score API listening", "addr", a.Cfg.ScoreAPIAddr)
	if err := a.APIServer("themescore-api").Run(ctx, a.Cfg.ScoreAPIAddr); err != nil {
		a.Log.Error("server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
}
