package models

// GeocodeResult is one address candidate from the geocoder.
type GeocodeResult struct {
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}
