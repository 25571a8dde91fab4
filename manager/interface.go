package manager

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Geocoding interface {
	Search(ctx context.Context, query string) (Location, error)
	Reverse(ctx context.Context, latitude, longitude float64) (Location, error)
}

type Weather interface {
	Forecast(ctx context.Context, latitude, longitude float64) (Report, error)
}

// Hourly never fails outright: problems are folded into the result status.
type Hourly interface {
	Hourly(ctx context.Context, latitude, longitude float64, date time.Time) HourlyResult
}

type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

// ShortName is the display name up to the first comma.
func (l Location) ShortName() string {
	name, _, _ := strings.Cut(l.DisplayName, ",")
	return strings.TrimSpace(name)
}

// Report is the raw current and daily blocks returned by a Weather provider.
type Report struct {
	Timezone string
	Current  Current
	Daily    []Daily
}

type Current struct {
	Temperature float64
	Humidity    float64
	WeatherCode int
}

type Daily struct {
	Date           time.Time
	MaxTemperature float64
	MinTemperature float64
	WeatherCode    int
}

type CurrentConditions struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WeatherCode   int     `json:"weatherCode"`
	ConditionText string  `json:"conditionText"`
}

type ForecastDay struct {
	Timestamp      int64     `json:"timestampSeconds"`
	Date           time.Time `json:"date"`
	MaxTemperature float64   `json:"maxTemperature"`
	MinTemperature float64   `json:"minTemperature"`
	WeatherCode    int       `json:"weatherCode"`
	ConditionText  string    `json:"conditionText"`
}

type HourlySample struct {
	LocalTimeLabel string  `json:"localTimeLabel"`
	Temperature    float64 `json:"temperature"`
	IsoDate        string  `json:"isoDate"`
}

type HourlyStatus int

const (
	HourlyNotAttempted HourlyStatus = iota
	HourlyEmpty
	HourlyFailed
	HourlyAvailable
)

func (s HourlyStatus) String() string {
	switch s {
	case HourlyEmpty:
		return "empty"
	case HourlyFailed:
		return "failed"
	case HourlyAvailable:
		return "available"
	default:
		return "not_attempted"
	}
}

func (s HourlyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *HourlyStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not_attempted":
		*s = HourlyNotAttempted
	case "empty":
		*s = HourlyEmpty
	case "failed":
		*s = HourlyFailed
	case "available":
		*s = HourlyAvailable
	default:
		return fmt.Errorf("unknown hourly status %q", text)
	}
	return nil
}

type HourlyResult struct {
	Status  HourlyStatus   `json:"status"`
	Samples []HourlySample `json:"samples"`
}

// HourlyResultOf classifies samples as available or empty.
func HourlyResultOf(samples []HourlySample) HourlyResult {
	if len(samples) == 0 {
		return HourlyResult{Status: HourlyEmpty, Samples: []HourlySample{}}
	}
	return HourlyResult{Status: HourlyAvailable, Samples: samples}
}

func HourlyFailure() HourlyResult {
	return HourlyResult{Status: HourlyFailed, Samples: []HourlySample{}}
}
