package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"rar_kit/internal/services/bike"
	"rar_kit/internal/services/calories"
	"rar_kit/internal/services/geocoding"
	"rar_kit/internal/services/location"
	"rar_kit/internal/services/routing"
	"rar_kit/internal/services/storage"
	"rar_kit/internal/services/weather"
)

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"-"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	// CORSOrigins empty means any origin.
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the sqlite file.
	Path string `yaml:"path"`
	// URL is a postgres:// URL; it takes precedence over the discrete fields.
	URL      string `yaml:"-"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

type RideConfig struct {
	MinDurationToSave time.Duration `yaml:"min_duration_to_save"`
	MaxStoredRides    int           `yaml:"max_stored_rides"`
	RiderWeight       float64       `yaml:"rider_weight"`
	// Simulate feeds the location service from a simulated GPS instead of
	// fixes reported by the phone.
	Simulate  bool          `yaml:"simulate"`
	StartLat  float64       `yaml:"start_lat"`
	StartLon  float64       `yaml:"start_lon"`
	FixMaxAge time.Duration `yaml:"fix_max_age"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	DB        DBConfig         `yaml:"db"`
	Ride      RideConfig       `yaml:"ride"`
	Bike      bike.Config      `yaml:"bike"`
	Calories  calories.Config  `yaml:"calories"`
	Location  location.Config  `yaml:"location"`
	Geocoding geocoding.Config `yaml:"geocoding"`
	Routing   routing.Config   `yaml:"routing"`
	Weather   weather.Config   `yaml:"weather"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			LogFile:  "./logs/app.log",
			LogLevel: "info",
		},
		DB: DBConfig{
			Driver:   "sqlite",
			Path:     "rar_kit.db",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "rar_kit",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Ride: RideConfig{
			MinDurationToSave: time.Minute,
			MaxStoredRides:    storage.MaxStoredRides,
			RiderWeight:       calories.DefaultRiderWeight,
			StartLat:          44.8125,
			StartLon:          20.4612,
			FixMaxAge:         30 * time.Second,
		},
		Bike:      bike.DefaultConfig(),
		Calories:  calories.DefaultConfig(),
		Location:  location.DefaultConfig(),
		Geocoding: geocoding.DefaultConfig(),
		Routing:   routing.DefaultConfig(),
		Weather:   weather.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment (a .env file is loaded first when present). Environment
// variables win over the file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("RAR_CONFIG")
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the API server cannot start without.
func (c Config) Validate() error {
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Server.JWTSecret = getEnv("JWT_SECRET", c.Server.JWTSecret)
	c.Server.LogFile = getEnv("LOG_FILE", c.Server.LogFile)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	c.DB.Driver = getEnv("DB_DRIVER", c.DB.Driver)
	c.DB.Path = getEnv("DB_PATH", c.DB.Path)
	c.DB.URL = getEnv("DATABASE_URL", c.DB.URL)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)
	c.DB.TimeZone = getEnv("DB_TIMEZONE", c.DB.TimeZone)

	c.Weather.APIKey = getEnv("WEATHER_API_KEY", c.Weather.APIKey)
	c.Weather.APIURL = getEnv("WEATHER_API_URL", c.Weather.APIURL)
	c.Routing.APIKey = getEnv("ORS_API_KEY", c.Routing.APIKey)
	c.Routing.BaseURL = getEnv("ORS_BASE_URL", c.Routing.BaseURL)
	c.Geocoding.BaseURL = getEnv("NOMINATIM_URL", c.Geocoding.BaseURL)

	if v, ok := os.LookupEnv("SIMULATE_GPS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SIMULATE_GPS: %w", err)
		}
		c.Ride.Simulate = b
	}
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
