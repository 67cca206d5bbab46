package routes

import (
	"github.com/gin-gonic/gin"
)

func NavigationRoutes(r *gin.Engine, h Handlers) {
	geocode := r.Group("/geocode")
	{
		geocode.GET("/search", h.Navigation.Search)
		geocode.GET("/reverse", h.Navigation.Reverse)
	}

	r.POST("/navigation/route", h.Navigation.Route)
	r.GET("/weather", h.Weather.Current)
}
