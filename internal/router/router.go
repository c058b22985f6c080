package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/handlers"
	"github.com/homehub-dev/homehub/internal/middleware"
)

func NewRouter(h *handlers.Handler, resolver middleware.UserResolver, origins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "WWW-Authenticate"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := middleware.AuthMiddleware(resolver)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", authenticated, h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Signup)
			auth.POST("/login", h.Login)
			auth.GET("/me", authenticated, h.Me)
		}

		hubs := api.Group("/hubs", authenticated)
		{
			hubs.POST("", h.CreateHub)
			hubs.GET("", h.ListHubs)
			hubs.GET("/:hub_id", h.GetHub)
			hubs.PATCH("/:hub_id", h.UpdateHub)
			hubs.DELETE("/:hub_id", h.DeleteHub)
			hubs.POST("/:hub_id/telemetry", h.ReportTelemetry)

			// Device endpoints
			hubs.POST("/:hub_id/devices", h.CreateDevice)
			hubs.GET("/:hub_id/devices", h.ListDevices)
			hubs.PATCH("/:hub_id/devices/:device_id", h.UpdateDevice)
			hubs.DELETE("/:hub_id/devices/:device_id", h.DeleteDevice)
		}

		cameras := api.Group("/cameras", authenticated)
		{
			cameras.POST("", h.CreateCamera)
			cameras.GET("", h.ListCameras)
			cameras.POST("/:camera_id/motion", h.RecordMotion)
			cameras.DELETE("/:camera_id", h.DeleteCamera)

			// Recognition associations
			cameras.GET("/:camera_id/family-members", h.ListCameraFamilyMembers)
			cameras.PUT("/:camera_id/family-members/:member_id", h.LinkFamilyMember)
			cameras.DELETE("/:camera_id/family-members/:member_id", h.UnlinkFamilyMember)
		}

		members := api.Group("/family-members", authenticated)
		{
			members.POST("", h.CreateFamilyMember)
			members.GET("", h.ListFamilyMembers)
			members.DELETE("/:member_id", h.DeleteFamilyMember)
		}
	}

	return r
}
