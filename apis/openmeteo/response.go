package openmeteo

import (
	"fmt"
	"time"

	"weatherdash/manager"
)

type forecastResponse struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Current          *struct {
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WeatherCode int      `json:"weather_code"`
	} `json:"current"`
	Daily *struct {
		Time           []string   `json:"time"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
		WeatherCode    []int      `json:"weather_code"`
	} `json:"daily"`
}

// Open-Meteo reports missing readings as null, so temperatures decode into
// pointers.
type hourlyResponse struct {
	Hourly *struct {
		Time        []string   `json:"time"`
		Temperature []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

func zone(name string, offset int) *time.Location {
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, offset)
}

func (r forecastResponse) report() (manager.Report, error) {
	if r.Current == nil || r.Daily == nil {
		return manager.Report{}, fmt.Errorf("response is missing the current or daily block")
	}
	if r.Current.Temperature == nil || r.Current.Humidity == nil {
		return manager.Report{}, fmt.Errorf("current block has null readings")
	}

	days := len(r.Daily.Time)
	if len(r.Daily.TemperatureMax) != days || len(r.Daily.TemperatureMin) != days || len(r.Daily.WeatherCode) != days {
		return manager.Report{}, fmt.Errorf("daily arrays differ in length: time=%d max=%d min=%d code=%d",
			days, len(r.Daily.TemperatureMax), len(r.Daily.TemperatureMin), len(r.Daily.WeatherCode))
	}

	loc := zone(r.Timezone, r.UTCOffsetSeconds)

	daily := make([]manager.Daily, 0, days)
	for i, raw := range r.Daily.Time {
		date, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return manager.Report{}, fmt.Errorf("parse daily time %q: %w", raw, err)
		}
		maxTemperature, minTemperature := r.Daily.TemperatureMax[i], r.Daily.TemperatureMin[i]
		if maxTemperature == nil || minTemperature == nil {
			return manager.Report{}, fmt.Errorf("daily temperatures for %s are null", raw)
		}
		daily = append(daily, manager.Daily{
			Date:           date,
			MaxTemperature: *maxTemperature,
			MinTemperature: *minTemperature,
			WeatherCode:    r.Daily.WeatherCode[i],
		})
	}

	return manager.Report{
		Timezone: r.Timezone,
		Current: manager.Current{
			Temperature: *r.Current.Temperature,
			Humidity:    *r.Current.Humidity,
			WeatherCode: r.Current.WeatherCode,
		},
		Daily: daily,
	}, nil
}

// samples returns the hourly readings whose local date is isoDate. Times in
// the response are already local to the location, so no conversion applies.
func (r hourlyResponse) samples(isoDate string) ([]manager.HourlySample, error) {
	if r.Hourly == nil {
		return nil, fmt.Errorf("response is missing the hourly block")
	}
	if len(r.Hourly.Time) != len(r.Hourly.Temperature) {
		return nil, fmt.Errorf("hourly arrays differ in length: time=%d temperature=%d",
			len(r.Hourly.Time), len(r.Hourly.Temperature))
	}

	samples := make([]manager.HourlySample, 0, 24)
	for i, raw := range r.Hourly.Time {
		t, err := time.Parse(localTimeLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse hourly time %q: %w", raw, err)
		}

		date := t.Format(dateLayout)
		if date != isoDate || r.Hourly.Temperature[i] == nil {
			continue
		}

		samples = append(samples, manager.HourlySample{
			LocalTimeLabel: t.Format(hourLabelLayout),
			Temperature:    *r.Hourly.Temperature[i],
			IsoDate:        date,
		})
	}

	return samples, nil
}
