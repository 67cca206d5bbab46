// Package weather fetches current conditions from an OpenWeatherMap-style API.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"rar_kit/internal/httputil"
	"rar_kit/internal/models"
)

// DemoKey makes failed lookups return canned conditions.
const DemoKey = "demo"

type Config struct {
	APIURL   string        `yaml:"api_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func DefaultConfig() Config {
	return Config{
		APIURL:   "https://api.openweathermap.org/data/2.5/weather",
		APIKey:   DemoKey,
		Timeout:  5 * time.Second,
		CacheTTL: 10 * time.Minute,
	}
}

// TemperatureSink receives every fetched temperature.
type TemperatureSink interface {
	SetTemperature(celsius float64)
}

type Service struct {
	cfg    Config
	client httputil.Doer
	sink   TemperatureSink
	cache  *expirable.LRU[string, models.WeatherData]
}

func NewService(cfg Config, client httputil.Doer, sink TemperatureSink) *Service {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout)
	}
	return &Service{
		cfg:    cfg,
		client: client,
		sink:   sink,
		cache:  expirable.NewLRU[string, models.WeatherData](64, nil, cfg.CacheTTL),
	}
}

// MockData is served for the demo key when the API is unreachable.
func MockData() models.WeatherData {
	return models.WeatherData{Temperature: 22, Condition: "Clear", Humidity: 65, WindSpeed: 3.5}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current returns conditions at the coordinate, or nil when unavailable.
func (s *Service) Current(ctx context.Context, lat, lon float64) *models.WeatherData {
	key := fmt.Sprintf("%.2f_%.2f", lat, lon)
	if cached, ok := s.cache.Get(key); ok {
		return &cached
	}

	data, err := s.fetch(ctx, lat, lon)
	if err != nil {
		if s.cfg.APIKey == DemoKey {
			logrus.WithError(err).Debug("Weather lookup failed, serving demo data.")
			mock := MockData()
			s.cache.Add(key, mock)
			return &mock
		}
		logrus.WithError(err).Warn("Weather lookup failed.")
		return nil
	}

	s.cache.Add(key, data)
	if s.sink != nil {
		s.sink.SetTemperature(data.Temperature)
	}
	return &data
}

func (s *Service) fetch(ctx context.Context, lat, lon float64) (models.WeatherData, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", s.cfg.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.WeatherData{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.WeatherData{}, err
	}
	var body owmResponse
	if err := httputil.DecodeJSON(resp, &body); err != nil {
		return models.WeatherData{}, err
	}

	data := models.WeatherData{
		Temperature: math.Round(body.Main.Temp),
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		data.Condition = body.Weather[0].Main
	}
	return data, nil
}
