// Package config loads mapchat settings from environment variables and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Geocode GeocodeConfig
	Routing RoutingConfig
	Detect  DetectConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

// DataConfig holds persistence settings.
type DataConfig struct {
	Dir          string        `mapstructure:"DATA_DIR"`
	SaveInterval time.Duration `mapstructure:"DATA_SAVE_INTERVAL"`
}

// GeocodeConfig holds Nominatim settings.
type GeocodeConfig struct {
	BaseURL   string        `mapstructure:"GEOCODE_URL"`
	UserAgent string        `mapstructure:"GEOCODE_USER_AGENT"`
	Throttle  time.Duration `mapstructure:"GEOCODE_THROTTLE"`
}

// RoutingConfig holds routing backend settings and engine heuristics.
type RoutingConfig struct {
	OSRMURL        string  `mapstructure:"OSRM_URL"`
	DriveTolerance float64 `mapstructure:"ROUTE_DRIVE_TOLERANCE"`
	SeaSegmentKm   float64 `mapstructure:"ROUTE_SEA_SEGMENT_KM"`
}

// DetectConfig holds detection settings.
type DetectConfig struct {
	Locale string `mapstructure:"DETECT_LOCALE"`
}

// Addr returns the HTTP listen address in host:port format.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 9090)
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DATA_SAVE_INTERVAL", "1m")

	viper.SetDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("GEOCODE_USER_AGENT", "Mapchat/1.0 (mapchat.dev)")
	viper.SetDefault("GEOCODE_THROTTLE", "1100ms")

	viper.SetDefault("OSRM_URL", "https://router.project-osrm.org")
	viper.SetDefault("ROUTE_DRIVE_TOLERANCE", 0.2)
	viper.SetDefault("ROUTE_SEA_SEGMENT_KM", 500.0)

	viper.SetDefault("DETECT_LOCALE", "en")

	// Missing .env is fine; plain env vars still apply.
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Data: DataConfig{
			Dir:          viper.GetString("DATA_DIR"),
			SaveInterval: viper.GetDuration("DATA_SAVE_INTERVAL"),
		},
		Geocode: GeocodeConfig{
			BaseURL:   viper.GetString("GEOCODE_URL"),
			UserAgent: viper.GetString("GEOCODE_USER_AGENT"),
			Throttle:  viper.GetDuration("GEOCODE_THROTTLE"),
		},
		Routing: RoutingConfig{
			OSRMURL:        viper.GetString("OSRM_URL"),
			DriveTolerance: viper.GetFloat64("ROUTE_DRIVE_TOLERANCE"),
			SeaSegmentKm:   viper.GetFloat64("ROUTE_SEA_SEGMENT_KM"),
		},
		Detect: DetectConfig{
			Locale: viper.GetString("DETECT_LOCALE"),
		},
	}
	return cfg, nil
}
