package main

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rar_kit/internal/config"
	"rar_kit/internal/controllers"
	"rar_kit/internal/models"
	"rar_kit/internal/routes"
	"rar_kit/internal/services/bike"
	"rar_kit/internal/services/calories"
	"rar_kit/internal/services/geocoding"
	"rar_kit/internal/services/location"
	"rar_kit/internal/services/routing"
	"rar_kit/internal/services/storage"
	"rar_kit/internal/services/weather"
	"rar_kit/internal/timeutil"
)

// app holds the long-lived services behind the router.
type app struct {
	router *gin.Engine
	bike   *bike.Connection
	loc    *location.Service
	hub    *controllers.TelemetryHub
	unsub  []func()
}

// newApp wires services to controllers. ctx bounds the telemetry stream
// and GPS tracking.
func newApp(ctx context.Context, cfg config.Config, db *gorm.DB) *app {
	clock := timeutil.RealClock{}

	calc := calories.NewCalculator(cfg.Calories, cfg.Ride.RiderWeight)
	var rider models.Rider
	if err := db.First(&rider).Error; err == nil && rider.Weight > 0 {
		calc.SetRiderWeight(rider.Weight)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Warn("Could not load rider profile")
	}

	conn := bike.NewConnection(cfg.Bike)
	session := bike.NewSession(clock, calc, cfg.Ride.MinDurationToSave)
	hub := controllers.NewTelemetryHub()

	var (
		provider location.Provider
		reported *location.ReportedProvider
	)
	if cfg.Ride.Simulate {
		provider = location.NewSimulatedProvider(cfg.Ride.StartLat, cfg.Ride.StartLon)
		logrus.Info("Using simulated GPS")
	} else {
		reported = location.NewReportedProvider(clock, cfg.Ride.FixMaxAge)
		provider = reported
	}
	loc := location.NewService(provider, clock, cfg.Location)

	rides := storage.NewRideStore(storage.NewGormKV(db), cfg.Ride.MaxStoredRides)

	a := &app{bike: conn, loc: loc, hub: hub}
	a.unsub = append(a.unsub,
		conn.Subscribe(session.OnBikeData),
		conn.Subscribe(hub.Publish),
	)

	a.router = routes.SetupRouter(routes.Handlers{
		Auth:     &controllers.AuthController{DB: db, Calories: calc},
		Settings: &controllers.SettingsController{DB: db, Calories: calc},
		Bike: &controllers.BikeController{
			Ctx:      ctx,
			Bike:     conn,
			Session:  session,
			Rides:    rides,
			Location: loc,
		},
		Location: &controllers.LocationController{Service: loc, Reported: reported},
		Navigation: &controllers.NavigationController{
			Geocoder: geocoding.NewGeocoder(cfg.Geocoding, nil),
			Router:   routing.NewCalculator(cfg.Routing, nil),
		},
		Weather: &controllers.WeatherController{Weather: weather.NewService(cfg.Weather, nil, conn)},
		Rides:   &controllers.RideController{Rides: rides},
		Sockets: &controllers.SocketController{Hub: hub, Reported: reported},
	})
	return a
}

// close stops background work in dependency order.
func (a *app) close() {
	a.loc.StopTracking()
	a.bike.Disconnect()
	for _, unsub := range a.unsub {
		unsub()
	}
	a.hub.Close()
}
