package routes

import (
	"github.com/gin-gonic/gin"
)

// BikeRoutes mounts the dashboard and location endpoints. They stay open
// so the bike display works before a rider signs in.
func BikeRoutes(r *gin.Engine, h Handlers) {
	bike := r.Group("/bike")
	{
		bike.GET("", h.Bike.GetBike)
		bike.POST("/connect", h.Bike.Connect)
		bike.POST("/disconnect", h.Bike.Disconnect)
		bike.PUT("/assistance", h.Bike.SetAssistance)
	}

	ride := r.Group("/ride")
	{
		ride.POST("/start", h.Bike.StartRide)
		ride.GET("/metrics", h.Bike.Metrics)
		ride.POST("/end", h.Bike.EndRide)
	}

	loc := r.Group("/location")
	{
		loc.GET("", h.Location.Current)
		loc.POST("", h.Location.Report)
		loc.POST("/permission", h.Location.SetPermission)
	}
}
