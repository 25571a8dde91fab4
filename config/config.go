package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Geocoding Geocoding `yaml:"geocoding"`
	Weather   Weather   `yaml:"weather"`
	HTTP      HTTP      `yaml:"http"`
	Dashboard Dashboard `yaml:"dashboard"`
	Log       Log       `yaml:"log"`
}

type Geocoding struct {
	BaseURL string `yaml:"baseURL"`
}

type Weather struct {
	BaseURL      string `yaml:"baseURL"`
	PastDays     int    `yaml:"pastDays"`
	ForecastDays int    `yaml:"forecastDays"`
}

// HTTP applies to every upstream client.
type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

type Dashboard struct {
	DefaultLocation string        `yaml:"defaultLocation"`
	Listen          string        `yaml:"listen"`
	SessionTTL      time.Duration `yaml:"sessionTTL"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

type Log struct {
	Debug bool `yaml:"debug"`
}

// Load decodes the embedded defaults and, when path is set, the file at path
// on top of them.
func Load(defaults []byte, path string) (Config, error) {
	var config Config

	if err := yaml.Unmarshal(defaults, &config); err != nil {
		return Config{}, fmt.Errorf("decode defaults: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	var errs []error

	if c.Geocoding.BaseURL == "" {
		errs = append(errs, errors.New("geocoding.baseURL is required"))
	}
	if c.Weather.BaseURL == "" {
		errs = append(errs, errors.New("weather.baseURL is required"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.Dashboard.DefaultLocation == "" {
		errs = append(errs, errors.New("dashboard.defaultLocation is required"))
	}
	if c.Dashboard.SessionTTL < 0 {
		errs = append(errs, errors.New("dashboard.sessionTTL must not be negative"))
	}

	return errors.Join(errs...)
}
