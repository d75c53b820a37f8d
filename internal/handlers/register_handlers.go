package handlers

import (
	"fmt"
	"time"

	"github.com/SscSPs/mycurrency/cmd/docs"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/middleware"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// m may be nil, in which case /metrics is not served.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
) error {
	corsCfg := newCORSConfig(cfg.CORSAllowedOrigins)
	if err := corsCfg.Validate(); err != nil {
		return fmt.Errorf("invalid CORS configuration: %w", err)
	}
	r.Use(cors.New(corsCfg), middleware.HTTPMetrics(m))

	r.GET("/health", getHealth)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	loginLimiter, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}
	registerAuthRoutes(r, services.Auth, middleware.RateLimit(loginLimiter))

	setupAPIV1Routes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group. Admin routes sit behind the JWT middleware.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	admin := v1.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	registerExchangeRateRoutes(v1, admin, service.ExchangeRate)
	registerCurrencyRoutes(v1, admin, service.Currency)
	registerProviderRoutes(admin, service.Provider)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func newCORSConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
