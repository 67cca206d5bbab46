package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/controllers"
)

// Handlers bundles every controller the router mounts.
type Handlers struct {
	Auth       *controllers.AuthController
	Settings   *controllers.SettingsController
	Bike       *controllers.BikeController
	Location   *controllers.LocationController
	Navigation *controllers.NavigationController
	Weather    *controllers.WeatherController
	Rides      *controllers.RideController
	Sockets    *controllers.SocketController
}

func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logging middleware, written through logrus
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logrus.StandardLogger().Writer()),
		ginlog.WithSkipPath([]string{"/health"}),
	))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	AuthRoutes(r, h)
	BikeRoutes(r, h)
	NavigationRoutes(r, h)
	RideRoutes(r, h)
	WebSocketRoutes(r, h)

	return r
}
