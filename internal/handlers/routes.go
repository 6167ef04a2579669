package handlers

import (
	"time"

	"leadcaller/internal/auth"
	"leadcaller/internal/logging"
	"leadcaller/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterOptions configures the cross-cutting middleware
type RouterOptions struct {
	Log            zerolog.Logger
	AllowedOrigins []string
	// Limiter guards the endpoints that place calls or send email. Nil disables it.
	Limiter        *middleware.RateLimiter
	AdminJWTSecret string
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinLogger(opts.Log))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// Configure trusted proxies
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)

	limited := router.Group("")
	limited.Use(middleware.RateLimit(opts.Limiter))
	{
		limited.POST("/send-email", h.SendEmail)
		limited.POST("/schedule-meeting", h.ScheduleMeeting)
		limited.POST("/meeting-agent", h.MeetingAgent)
	}

	// Webhooks from the in-call agent
	router.POST("/user-progress", h.ReportProgress)
	router.PATCH("/user-progress/:call_id", h.PatchCallIDVoice)

	admin := router.Group("")
	admin.Use(auth.RequireBearer(opts.AdminJWTSecret))
	{
		admin.GET("/meetings", h.ListMeetings)
		admin.GET("/meetings/:id/calls", h.ListCallAttempts)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
