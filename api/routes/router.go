// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"boxstudio/internal/analytics"
	"boxstudio/internal/auth"
	"boxstudio/internal/bookings"
	"boxstudio/internal/members"
	"boxstudio/internal/notifications"
	"boxstudio/internal/payments"
	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/database"
	"boxstudio/internal/shared/middleware"
	"boxstudio/internal/whatsapp"
	"boxstudio/pkg/cache"
	"boxstudio/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "boxstudio/docs"
)

const serviceName = "boxstudio-backend"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	cache     cache.Service

	whatsappService whatsapp.Service
}

// NewRouter creates a new router instance. cacheService may be nil.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, cacheService cache.Service) *Router {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		cache:     cacheService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", metrics.Handler())
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())

	// QR codes carry their own token, so check-in sits outside bearer auth
	r.setupCheckInRoutes(api)
	r.setupAuthRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(r.config.Auth))
	{
		r.setupAnalyticsRoutes(protected)
		r.setupBookingRoutes(protected)
		r.setupPaymentRoutes(protected)
		r.setupWhatsAppRoutes(protected)
	}
}

// WhatsAppService returns the service behind the status routes so the Kafka
// consumer can share it. Valid after SetupRoutes.
func (r *Router) WhatsAppService() whatsapp.Service {
	return r.whatsappService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"redis_cache":   r.cache != nil,
			"kafka_enabled": r.config.Kafka.Enabled,
			"timestamp":     time.Now(),
		})
	})
}

// setupAuthRoutes exposes the API token to admin JWT exchange
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(r.config.Auth)
	auth.NewRouter(auth.NewController(authService)).SetupRoutes(rg)
}

func (r *Router) setupCheckInRoutes(rg *gin.RouterGroup) {
	memberRepo := members.NewRepository(r.db.GetPostgreSQL())
	memberService := members.NewService(memberRepo, r.config.Auth.QRToken, r.publisher, r.cache)
	members.SetupCheckInRoutes(rg, members.NewController(memberService))
}

func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo, r.cache)
	analytics.SetupAnalyticsRoutes(rg, analytics.NewController(analyticsService))
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, r.publisher, r.cache)
	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService))
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(paymentRepo, r.publisher, r.cache)
	payments.SetupPaymentRoutes(rg, payments.NewController(paymentService))
}

func (r *Router) setupWhatsAppRoutes(rg *gin.RouterGroup) {
	whatsappRepo := whatsapp.NewRepository(r.db.GetPostgreSQL())
	r.whatsappService = whatsapp.NewService(whatsappRepo, r.publisher, r.cache, whatsapp.Options{
		PermissiveStatus: r.config.WhatsApp.PermissiveStatus,
	})
	whatsapp.SetupWhatsAppRoutes(rg, whatsapp.NewController(r.whatsappService))
}
