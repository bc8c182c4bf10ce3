// Package config provides configuration for the geopicture binaries.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for both the client and the dev server.
type Config struct {
	// Backend
	BaseURL     string
	HTTPTimeout time.Duration

	// Reverse geocoding. Empty disables geocoding and keeps raw coordinates.
	GeocoderURL string

	// Field cache
	FieldsDB string

	// Terminal device bridge
	CameraDir string
	DeviceLat float64
	DeviceLng float64

	// Dev server
	HTTPPort    int
	DatabaseURL string
	DevUser     string
	DevPass     string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080/"),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		GeocoderURL: getEnv("GEOCODER_URL", ""),
		FieldsDB:    getEnv("FIELDS_DB", "geopicture-fields.db"),
		CameraDir:   getEnv("CAMERA_DIR", "."),
		DeviceLat:   getEnvFloat("DEVICE_LAT", 0),
		DeviceLng:   getEnvFloat("DEVICE_LNG", 0),
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", "file:geopicture.db?cache=shared&mode=rwc"),
		DevUser:     getEnv("DEV_USER", "admin"),
		DevPass:     getEnv("DEV_PASS", "admin"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
