package domain

import "fmt"

type Place struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FallbackAddress is the label used when reverse geocoding yields nothing.
func FallbackAddress(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}
