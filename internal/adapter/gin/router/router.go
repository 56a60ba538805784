package router

import (
	"context"
	"net/http"
	"time"

	"crf-service/api/swagger"
	"crf-service/internal/adapter/gin/handler"
	"crf-service/internal/adapter/gin/middleware"
	"crf-service/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "crf-service"

const healthCheckTimeout = 2 * time.Second

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Admin   *handler.AdminHandler
	Patient *handler.PatientHandler
	Study   *handler.StudyHandler
	User    *handler.UserHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Limiter      *ratelimit.Limiter
	AllowOrigins []string
	// HealthCheck is called by /health; nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(h Handlers, opts Options, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(opts.AllowOrigins))
	router.Use(middleware.RateLimiter(opts.Limiter, log))

	router.GET("/health", health(opts.HealthCheck, log))

	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", swagger.OpenAPI)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	api := router.Group("/api")
	{
		api.GET("/admin/stats", h.Admin.Stats)

		patients := api.Group("/patients")
		{
			patients.GET("", h.Patient.ListPatients)
			patients.POST("", h.Patient.CreatePatient)
			patients.PUT("/:patient_id", h.Patient.UpdatePatient)
			patients.DELETE("/:patient_id", h.Patient.DeletePatient)
		}

		api.GET("/structure", h.Study.Structure)

		crf := api.Group("/crf")
		{
			crf.POST("/save/:patient_id", h.Study.SaveCRF)
			crf.GET("/:patient_id/:event_code/:crf_code", h.Study.CRFDetail)
		}

		users := api.Group("/user")
		{
			users.GET("/:user_id", h.User.GetUser)
			users.PUT("/:user_id/profile", h.User.UpdateProfile)
		}
	}

	return router
}

func health(check func(ctx context.Context) error, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()

			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": ServiceName,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	}
}
