package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/themescore-backend/internal/http/handlers"
	httpMW "github.com/yungbote/themescore-backend/internal/http/middleware"
	"github.com/yungbote/themescore-backend/internal/observability"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName names the otelgin server spans.
	ServiceName string

	HealthHandler *httpH.HealthHandler
	ScoreHandler  *httpH.ScoreHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	v1 := r.Group("/v1")
	{
		if cfg.ScoreHandler != nil {
			v1.GET("/themes", cfg.ScoreHandler.ListThemes)
			v1.GET("/themes/:theme_id/companies", cfg.ScoreHandler.RankThemeCompanies)
			v1.GET("/companies/:company_id/themes", cfg.ScoreHandler.ListCompanyThemes)
			v1.GET("/documents/:doc_id/scores", cfg.ScoreHandler.ListDocumentScores)
			v1.GET("/runs/latest", cfg.ScoreHandler.LatestRun)
		}
	}

	return r
}
