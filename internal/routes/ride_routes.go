package routes

import (
	"github.com/gin-gonic/gin"

	"rar_kit/internal/middleware"
)

func RideRoutes(r *gin.Engine, h Handlers) {
	rides := r.Group("/rides")
	rides.Use(middleware.RequireAuth())
	{
		rides.GET("", h.Rides.List)
		rides.DELETE("", h.Rides.Clear)
		rides.GET("/stats", h.Rides.Stats)
		rides.GET("/chart", h.Rides.Chart)
		rides.GET("/:id", h.Rides.Get)
		rides.GET("/:id/gpx", h.Rides.GPX)
		rides.GET("/:id/fit", h.Rides.FIT)
		rides.DELETE("/:id", h.Rides.Delete)
	}
}
