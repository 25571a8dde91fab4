package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/apis"
	"weatherdash/manager"
)

const forecastBody = `{
  "latitude": 31.5,
  "longitude": 74.375,
  "utc_offset_seconds": 18000,
  "timezone": "Asia/Karachi",
  "timezone_abbreviation": "PKT",
  "current": {
    "time": "2026-10-19T14:15",
    "interval": 900,
    "temperature_2m": 31.2,
    "relative_humidity_2m": 41,
    "weather_code": 0
  },
  "daily": {
    "time": ["2026-10-19","2026-10-20","2026-10-21","2026-10-22","2026-10-23","2026-10-24","2026-10-25"],
    "temperature_2m_max": [33.1, 32.4, 30.0, 29.8, 31.5, 32.2, 33.0],
    "temperature_2m_min": [19.2, 19.8, 20.1, 18.7, 18.9, 19.5, 20.0],
    "weather_code": [0, 61, 3, 1, 2, 45, 80]
  }
}`

const hourlyBody = `{
  "utc_offset_seconds": 18000,
  "timezone": "Asia/Karachi",
  "hourly": {
    "time": ["2026-10-18T22:00","2026-10-18T23:00","2026-10-19T00:00","2026-10-19T01:00","2026-10-19T13:00","2026-10-20T00:00"],
    "temperature_2m": [21.0, 20.4, 19.9, 19.5, 30.8, 20.2]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *weatherApi {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return New(Options{Options: apis.Options{BaseURL: ts.URL}})
}

func TestWeatherApi_Forecast(t *testing.T) {
	w := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "31.5", q.Get("latitude"))
		assert.Equal(t, "74.3", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,weather_code", q.Get("current"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,weather_code", q.Get("daily"))
		assert.Equal(t, "auto", q.Get("timezone"))

		_, _ = w.Write([]byte(forecastBody))
	})

	report, err := w.Forecast(context.Background(), 31.5, 74.3)
	require.NoError(t, err)

	assert.Equal(t, "Asia/Karachi", report.Timezone)
	assert.Equal(t, manager.Current{Temperature: 31.2, Humidity: 41, WeatherCode: 0}, report.Current)

	require.Len(t, report.Daily, 7)
	first := report.Daily[0]
	assert.Equal(t, "2026-10-19", first.Date.Format("2006-01-02"))
	assert.Equal(t, time.Date(2026, time.October, 18, 19, 0, 0, 0, time.UTC).Unix(), first.Date.Unix())
	assert.Equal(t, 33.1, first.MaxTemperature)
	assert.Equal(t, 19.2, first.MinTemperature)
	assert.Equal(t, 61, report.Daily[1].WeatherCode)
	assert.Equal(t, 80, report.Daily[6].WeatherCode)
}

func TestWeatherApi_Forecast_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "server error", body: `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`, code: http.StatusBadRequest},
		{name: "malformed", body: `{"current":`, code: http.StatusOK},
		{name: "missing daily", body: `{"current":{"temperature_2m":1}}`, code: http.StatusOK},
		{name: "ragged arrays", body: `{"current":{"temperature_2m":1,"relative_humidity_2m":2},"daily":{"time":["2026-10-19","2026-10-20"],"temperature_2m_max":[1],"temperature_2m_min":[1,2],"weather_code":[0,0]}}`, code: http.StatusOK},
		{name: "null daily temperature", body: `{"current":{"temperature_2m":1,"relative_humidity_2m":2},"daily":{"time":["2026-10-19"],"temperature_2m_max":[null],"temperature_2m_min":[1],"weather_code":[0]}}`, code: http.StatusOK},
		{name: "null current temperature", body: `{"current":{"temperature_2m":null,"relative_humidity_2m":2},"daily":{"time":[],"temperature_2m_max":[],"temperature_2m_min":[],"weather_code":[]}}`, code: http.StatusOK},
		{name: "bad date", body: `{"current":{"temperature_2m":1,"relative_humidity_2m":2},"daily":{"time":["19/10/2026"],"temperature_2m_max":[1],"temperature_2m_min":[1],"weather_code":[0]}}`, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := w.Forecast(context.Background(), 91, 74.3)
			assert.ErrorIs(t, err, manager.ErrWeatherFetch)
			assert.Equal(t, "Failed to fetch weather data", manager.UserMessage(err))
		})
	}
}

func TestWeatherApi_Hourly(t *testing.T) {
	w := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "temperature_2m", q.Get("hourly"))
		assert.Equal(t, "2", q.Get("past_days"))
		assert.Equal(t, "7", q.Get("forecast_days"))
		assert.Equal(t, "auto", q.Get("timezone"))

		_, _ = w.Write([]byte(hourlyBody))
	})

	date := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.FixedZone("Asia/Karachi", 18000))
	result := w.Hourly(context.Background(), 31.5, 74.3, date)

	require.Equal(t, manager.HourlyAvailable, result.Status)
	assert.Equal(t, []manager.HourlySample{
		{LocalTimeLabel: "12:00 AM", Temperature: 19.9, IsoDate: "2026-10-19"},
		{LocalTimeLabel: "01:00 AM", Temperature: 19.5, IsoDate: "2026-10-19"},
		{LocalTimeLabel: "01:00 PM", Temperature: 30.8, IsoDate: "2026-10-19"},
	}, result.Samples)
}

func TestWeatherApi_Hourly_SkipsNullReadings(t *testing.T) {
	w := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["2026-10-19T00:00","2026-10-19T01:00","2026-10-19T02:00"],"temperature_2m":[19.9,null,19.1]}}`))
	})

	result := w.Hourly(context.Background(), 31.5, 74.3, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))

	require.Equal(t, manager.HourlyAvailable, result.Status)
	assert.Equal(t, []manager.HourlySample{
		{LocalTimeLabel: "12:00 AM", Temperature: 19.9, IsoDate: "2026-10-19"},
		{LocalTimeLabel: "02:00 AM", Temperature: 19.1, IsoDate: "2026-10-19"},
	}, result.Samples)

	w = newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["2026-10-19T00:00"],"temperature_2m":[null]}}`))
	})
	result = w.Hourly(context.Background(), 31.5, 74.3, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, manager.HourlyEmpty, result.Status)
}

func TestWeatherApi_Hourly_OutsideWindow(t *testing.T) {
	w := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(hourlyBody))
	})

	result := w.Hourly(context.Background(), 31.5, 74.3, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, manager.HourlyEmpty, result.Status)
	assert.NotNil(t, result.Samples)
	assert.Empty(t, result.Samples)
}

func TestWeatherApi_Hourly_Failures(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()
		w := New(Options{Options: apis.Options{BaseURL: ts.URL}})

		result := w.Hourly(context.Background(), 31.5, 74.3, time.Now())
		assert.Equal(t, manager.HourlyFailed, result.Status)
		assert.NotNil(t, result.Samples)
		assert.Empty(t, result.Samples)
	})

	t.Run("missing block", func(t *testing.T) {
		w := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"timezone":"UTC"}`))
		})

		result := w.Hourly(context.Background(), 31.5, 74.3, time.Now())
		assert.Equal(t, manager.HourlyFailed, result.Status)
	})

	t.Run("status", func(t *testing.T) {
		w := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		result := w.Hourly(context.Background(), 31.5, 74.3, time.Now())
		assert.Equal(t, manager.HourlyFailed, result.Status)
	})
}

func TestWeatherApi_HourlyWindowFromOptions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("past_days"))
		assert.Equal(t, "14", r.URL.Query().Get("forecast_days"))
		_, _ = w.Write([]byte(hourlyBody))
	}))
	t.Cleanup(ts.Close)

	w := New(Options{Options: apis.Options{BaseURL: ts.URL}, PastDays: 1, ForecastDays: 14})
	w.Hourly(context.Background(), 0, 0, time.Now())
}
