package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-webinar-management/internal/api"
	"github.com/sanosuguru/go-webinar-management/internal/api/handler"
	"github.com/sanosuguru/go-webinar-management/internal/api/middleware"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/metrics"
)

const metricsPath = "/metrics"

// Options はルーティングに必要な依存
type Options struct {
	WebinarService handler.WebinarServiceInterface
	UserService    middleware.UserFinder
	HealthChecks   map[string]handler.HealthCheck

	// Metrics が nil の場合は HTTP メトリクスと /metrics を無効化する
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsAuth *middleware.MetricsConfig
}

// New はミドルウェアとルートを設定した Echo を返す
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)

	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics, metricsPath))

		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET(metricsPath,
			echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(opts.MetricsAuth),
		)
	}

	healthHandler := handler.NewHealthHandler(opts.HealthChecks)
	webinarHandler := handler.NewWebinarHandler(opts.WebinarService)

	e.GET("/health", healthHandler.Check)

	currentUser := middleware.CurrentUser(opts.UserService)

	v1 := e.Group("/api/v1")
	v1.POST("/webinars", webinarHandler.Create, currentUser)
	v1.GET("/webinars/:id", webinarHandler.GetByID)
	v1.POST("/webinars/:id/seats", webinarHandler.ChangeSeats, currentUser)

	return e
}
