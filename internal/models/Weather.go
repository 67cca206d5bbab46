package models

type WeatherData struct {
	Temperature float64 `json:"temperature"` // Celsius, rounded
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}
