package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/astrocashier/docs"
	"github.com/fatflowers/astrocashier/internal/app/api/handlers"
	mw "github.com/fatflowers/astrocashier/internal/app/api/middleware"
	nh "github.com/fatflowers/astrocashier/internal/app/service/notification_handler"
	"github.com/fatflowers/astrocashier/internal/app/service/payment"
	"github.com/fatflowers/astrocashier/internal/app/service/statistics"
	subsvc "github.com/fatflowers/astrocashier/internal/app/service/subscription"
	cfgpkg "github.com/fatflowers/astrocashier/pkg/config"
	metrics "github.com/fatflowers/astrocashier/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log          *zap.SugaredLogger
	Cfg          *cfgpkg.Config
	DB           *gorm.DB
	NotifHandler *nh.NotificationHandler
	Issuer       *payment.Issuer
	Ledger       *payment.Ledger
	Sub          *subsvc.Service
	Resolver     *subsvc.Resolver
	Stats        *statistics.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			MetricsList: metrics.BusinessMetrics,
			Logger:      d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	logged := []gin.HandlerFunc{mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware()}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(logged...)
	handlers.RegisterHealthRoutes(pub, handlers.DBPinger(d.DB))
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin APIs behind bearer auth
	admin := r.Group("/api/v1/admin")
	admin.Use(logged...)
	admin.Use(mw.AdminAuthMiddleware(d.Cfg.Admin.JWTSecret))
	handlers.RegisterAdminPaymentRoutes(admin, d.Ledger, d.Stats, d.Sub)

	// Payment v2 APIs
	apiV2Payment := r.Group("/api/v2/payment")
	apiV2Payment.Use(logged...)
	handlers.RegisterPaymentV2Routes(apiV2Payment, d.Issuer)
	handlers.RegisterPaymentWebhookRoutes(apiV2Payment.Group("/webhook"), d.NotifHandler, d.Log)

	apiV2Subscription := r.Group("/api/v2/subscription")
	apiV2Subscription.Use(logged...)
	handlers.RegisterSubscriptionRoutes(apiV2Subscription, d.Resolver)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine, shutdowner fx.Shutdowner) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("server error", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
