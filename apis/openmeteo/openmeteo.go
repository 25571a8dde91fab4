package openmeteo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherdash/apis"
	"weatherdash/logger"
	"weatherdash/manager"
)

const (
	serviceName    = "open-meteo"
	DefaultBaseURL = "https://api.open-meteo.com"

	forecastPath = "/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,weather_code"
	dailyFields   = "temperature_2m_max,temperature_2m_min,weather_code"
	hourlyFields  = "temperature_2m"

	dateLayout      = "2006-01-02"
	localTimeLayout = "2006-01-02T15:04"
	hourLabelLayout = "03:04 PM"

	defaultPastDays     = 2
	defaultForecastDays = 7
)

type Options struct {
	apis.Options
	// PastDays and ForecastDays bound the hourly window.
	PastDays     int
	ForecastDays int
}

func New(opts Options) *weatherApi {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PastDays <= 0 {
		opts.PastDays = defaultPastDays
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = defaultForecastDays
	}
	return &weatherApi{
		client:       apis.NewClient(serviceName, opts.Options),
		pastDays:     opts.PastDays,
		forecastDays: opts.ForecastDays,
	}
}

type weatherApi struct {
	client       *resty.Client
	pastDays     int
	forecastDays int
}

// Forecast fetches current conditions and the daily aggregates. Any failure
// is reported as manager.ErrWeatherFetch.
func (w weatherApi) Forecast(ctx context.Context, latitude, longitude float64) (manager.Report, error) {
	params := coordinates(latitude, longitude)
	params["current"] = currentFields
	params["daily"] = dailyFields
	params["timezone"] = "auto"

	var r forecastResponse
	if err := w.get(ctx, params, &r); err != nil {
		return manager.Report{}, fmt.Errorf("%w: %v", manager.ErrWeatherFetch, err)
	}

	report, err := r.report()
	if err != nil {
		return manager.Report{}, fmt.Errorf("%w: %v", manager.ErrWeatherFetch, err)
	}

	return report, nil
}

// Hourly fetches the fixed hourly window and keeps the samples whose local
// calendar date matches date as formatted in its own location. Failures are
// logged and reported through the result status.
func (w weatherApi) Hourly(ctx context.Context, latitude, longitude float64, date time.Time) manager.HourlyResult {
	params := coordinates(latitude, longitude)
	params["hourly"] = hourlyFields
	params["past_days"] = strconv.Itoa(w.pastDays)
	params["forecast_days"] = strconv.Itoa(w.forecastDays)
	params["timezone"] = "auto"

	var r hourlyResponse
	if err := w.get(ctx, params, &r); err != nil {
		logger.Warnw("hourly fetch failed", "latitude", latitude, "longitude", longitude, "error", err)
		return manager.HourlyFailure()
	}

	samples, err := r.samples(date.Format(dateLayout))
	if err != nil {
		logger.Warnw("hourly response rejected", "latitude", latitude, "longitude", longitude, "error", err)
		return manager.HourlyFailure()
	}

	return manager.HourlyResultOf(samples)
}

func (w weatherApi) get(ctx context.Context, params map[string]string, result any) error {
	response, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		ForceContentType("application/json").
		Get(forecastPath)
	if err != nil {
		return err
	}

	if !response.IsSuccess() {
		return apis.StatusError(response)
	}

	return nil
}

func coordinates(latitude, longitude float64) map[string]string {
	return map[string]string{
		"latitude":  strconv.FormatFloat(latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(longitude, 'f', -1, 64),
	}
}
