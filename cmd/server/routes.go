package main

import (
	"github.com/Mykyta-Harashchenko/contacthub/internal/middleware"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public auth routes
	authLimiter := middleware.NewRateLimiter(svc.cfg.RateLimit.RPS, svc.cfg.RateLimit.Burst)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
			auth.GET("/refresh_token", svc.authHandler.Refresh)
			auth.GET("/confirmed_email/:token", svc.authHandler.ConfirmEmail)
			auth.POST("/request_email", svc.authHandler.RequestEmail)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(svc.authService), middleware.AuditLog())
		{
			// Users
			protected.GET("/users/me", svc.userHandler.Me)
			protected.PATCH("/users/avatar", svc.userHandler.UpdateAvatar)

			// Contacts
			protected.GET("/contacts", svc.contactHandler.List)
			protected.POST("/contacts", svc.contactHandler.Create)
			protected.GET("/contacts/search", svc.contactHandler.Search)
			protected.GET("/contacts/upcoming-birthdays", svc.contactHandler.UpcomingBirthdays)
			protected.GET("/contacts/:id", svc.contactHandler.Get)
			protected.PUT("/contacts/:id", svc.contactHandler.Update)
			protected.DELETE("/contacts/:id", svc.contactHandler.Delete)
		}
	}
}
