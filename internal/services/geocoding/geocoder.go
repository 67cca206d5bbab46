// Package geocoding resolves addresses to coordinates and back through a
// Nominatim-compatible API, with caching and client-side rate limiting.
package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"rar_kit/internal/httputil"
	"rar_kit/internal/models"
)

const minQueryLength = 3

type Config struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	Language    string        `yaml:"language"`
	Limit       int           `yaml:"limit"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CacheSize   int           `yaml:"cache_size"`
	MinInterval time.Duration `yaml:"min_interval"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://nominatim.openstreetmap.org",
		UserAgent:   "RAR-Kit/1.0",
		Language:    "en",
		Limit:       5,
		CacheTTL:    5 * time.Minute,
		CacheSize:   256,
		MinInterval: time.Second,
	}
}

type Geocoder struct {
	cfg     Config
	client  httputil.Doer
	limiter *rate.Limiter
	search  *expirable.LRU[string, []models.GeocodeResult]
	reverse *expirable.LRU[string, string]
}

func NewGeocoder(cfg Config, client httputil.Doer) *Geocoder {
	if client == nil {
		client = httputil.NewClient(0)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Geocoder{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		search:  expirable.NewLRU[string, []models.GeocodeResult](cfg.CacheSize, nil, cfg.CacheTTL),
		reverse: expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// Search looks up an address. Queries under three characters and failed
// lookups yield an empty result.
func (g *Geocoder) Search(ctx context.Context, query string) []models.GeocodeResult {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return []models.GeocodeResult{}
	}

	key := "search_" + strings.ToLower(query)
	if cached, ok := g.search.Get(key); ok {
		return cached
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(g.cfg.Limit))
	params.Set("addressdetails", "1")

	var places []nominatimPlace
	if err := g.get(ctx, "/search", params, &places); err != nil {
		logrus.WithError(err).WithField("query", query).Warn("Geocoding search failed.")
		return []models.GeocodeResult{}
	}

	results := make([]models.GeocodeResult, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		results = append(results, models.GeocodeResult{
			Address:     addressLabel(p.Address, query),
			Latitude:    lat,
			Longitude:   lon,
			DisplayName: p.DisplayName,
		})
	}
	if len(results) > 0 {
		g.search.Add(key, results)
	}
	return results
}

// Reverse returns the display name for a coordinate, or "" when none.
func (g *Geocoder) Reverse(ctx context.Context, coords models.LocationCoords) string {
	key := fmt.Sprintf("reverse_%.4f_%.4f", coords.Latitude, coords.Longitude)
	if cached, ok := g.reverse.Get(key); ok {
		return cached
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("format", "json")

	var place nominatimPlace
	if err := g.get(ctx, "/reverse", params, &place); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lat": coords.Latitude,
			"lon": coords.Longitude,
		}).Warn("Reverse geocoding failed.")
		return ""
	}
	if place.DisplayName != "" {
		g.reverse.Add(key, place.DisplayName)
	}
	return place.DisplayName
}

func (g *Geocoder) ClearCache() {
	g.search.Purge()
	g.reverse.Purge()
}

func (g *Geocoder) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)
	req.Header.Set("Accept-Language", g.cfg.Language)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	return httputil.DecodeJSON(resp, v)
}

func addressLabel(addr map[string]string, fallback string) string {
	for _, k := range []string{"road", "city", "town"} {
		if v := addr[k]; v != "" {
			return v
		}
	}
	return fallback
}
