package routes

import (
	"github.com/gin-gonic/gin"

	"rar_kit/internal/middleware"
)

func AuthRoutes(r *gin.Engine, h Handlers) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
	}

	settings := r.Group("/settings")
	settings.Use(middleware.RequireAuth())
	{
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
	}
}
