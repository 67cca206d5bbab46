package routes

import (
	"github.com/gin-gonic/gin"

	"rar_kit/internal/middleware"
)

func WebSocketRoutes(r *gin.Engine, h Handlers) {
	wsRoutes := r.Group("/ws")
	wsRoutes.Use(middleware.RequireAuth())
	{
		wsRoutes.GET("/telemetry", h.Sockets.Telemetry)
		wsRoutes.GET("/location", h.Sockets.Location)
	}
}
