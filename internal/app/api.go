package app

import (
	"context"

	server "github.com/yungbote/themescore-backend/internal/http"
	httpH "github.com/yungbote/themescore-backend/internal/http/handlers"
)

// APIServer builds the read-only score API over the app's store.
func (a *App) APIServer(serviceName string) *server.Server {
	ping := func(ctx context.Context) error {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return server.NewServer(server.RouterConfig{
		Log:           a.Log,
		Metrics:       a.Metrics,
		CORSOrigins:   a.Cfg.CORSOrigins,
		ServiceName:   serviceName,
		HealthHandler: httpH.NewHealthHandler(ping),
		ScoreHandler:  httpH.NewScoreHandler(a.Log, a.Repos),
	})
}
