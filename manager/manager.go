package manager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"weatherdash/logger"
	"weatherdash/metrics"
)

const DefaultLocation = "Lahore"

func New(geocoding Geocoding, weather Weather, hourly Hourly) *Dashboard {
	return &Dashboard{
		geocoding:       geocoding,
		weather:         weather,
		hourly:          hourly,
		defaultLocation: DefaultLocation,
		state:           Idle{},
	}
}

// Dashboard sequences the fetchers and owns the resulting State.
//
// Search and Locate each take a new generation; a result that arrives after a
// newer generation was taken is dropped. SelectDay does the same with its own
// day token so a late hourly response cannot reopen a panel the user left.
type Dashboard struct {
	geocoding       Geocoding
	weather         Weather
	hourly          Hourly
	defaultLocation string

	mu         sync.Mutex
	state      State
	query      string
	generation uint64
	dayToken   uint64
}

func (d *Dashboard) SetDefaultLocation(location string) {
	if location = strings.TrimSpace(location); location != "" {
		d.defaultLocation = location
	}
}

// Start performs the initial load for the default location.
func (d *Dashboard) Start(ctx context.Context) State {
	return d.Search(ctx, d.defaultLocation)
}

// Search resolves query and loads its weather. Blank queries are ignored.
func (d *Dashboard) Search(ctx context.Context, query string) State {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.State()
	}

	generation := d.begin(query)

	location, err := d.geocoding.Search(ctx, query)
	if err != nil {
		logger.Warnw("geocoding failed", "query", query, "error", err)
		return d.fail(generation, query, err)
	}

	report, err := d.weather.Forecast(ctx, location.Latitude, location.Longitude)
	if err != nil {
		logger.Warnw("weather fetch failed", "query", query, "error", err)
		return d.fail(generation, query, err)
	}

	return d.commit(generation, reconcile(location, report))
}

// Locate loads weather for device coordinates, then names them by reverse
// geocoding. When the name cannot be resolved the coordinates stand in for it.
func (d *Dashboard) Locate(ctx context.Context, latitude, longitude float64) State {
	query := formatCoordinates(latitude, longitude)
	generation := d.begin(query)

	report, err := d.weather.Forecast(ctx, latitude, longitude)
	if err != nil {
		logger.Warnw("weather fetch failed", "query", query, "error", err)
		return d.fail(generation, query, err)
	}

	location, err := d.geocoding.Reverse(ctx, latitude, longitude)
	if err != nil {
		logger.Debugw("reverse geocoding failed", "query", query, "error", err)
		location = Location{DisplayName: query}
	}
	location.Latitude = latitude
	location.Longitude = longitude

	return d.commit(generation, reconcile(location, report))
}

// SelectDay opens the hourly panel for the forecast day with the given
// timestamp (seconds) and fills it once the hourly fetch returns.
func (d *Dashboard) SelectDay(ctx context.Context, timestamp int64) (State, error) {
	d.mu.Lock()

	var loaded Loaded
	switch s := d.state.(type) {
	case Loaded:
		loaded = s
	case DayExpanded:
		loaded = s.Loaded
	default:
		d.mu.Unlock()
		return d.State(), ErrNoSuchDay
	}

	day, ok := loaded.Day(timestamp)
	if !ok {
		d.mu.Unlock()
		return d.State(), fmt.Errorf("%w: %d", ErrNoSuchDay, timestamp)
	}

	d.dayToken++
	token := d.dayToken
	d.setState(DayExpanded{
		Loaded:            loaded,
		SelectedDayMillis: timestamp * 1000,
		Day:               day,
		Hourly:            HourlyResult{Status: HourlyNotAttempted},
	})
	d.mu.Unlock()

	result := d.hourly.Hourly(ctx, loaded.Location.Latitude, loaded.Location.Longitude, day.Date)

	d.mu.Lock()
	defer d.mu.Unlock()

	expanded, ok := d.state.(DayExpanded)
	if !ok || token != d.dayToken {
		metrics.StaleResults.WithLabelValues("hourly").Inc()
		logger.Debugw("discarding stale hourly result", "timestamp", timestamp)
		return d.state, nil
	}

	expanded.Hourly = result
	d.setState(expanded)
	return expanded, nil
}

// Back closes the hourly panel. It is a no-op outside DayExpanded.
func (d *Dashboard) Back() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if expanded, ok := d.state.(DayExpanded); ok {
		d.dayToken++
		d.setState(expanded.Loaded)
	}
	return d.state
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return snapshotOf(d.state, d.query, d.generation)
}

func (d *Dashboard) begin(query string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.dayToken++
	d.query = query
	d.setState(Loading{Query: query})
	return d.generation
}

func (d *Dashboard) fail(generation uint64, query string, err error) State {
	return d.commit(generation, LoadedWithError{Query: query, Message: UserMessage(err)})
}

func (d *Dashboard) commit(generation uint64, next State) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if generation != d.generation {
		metrics.StaleResults.WithLabelValues("search").Inc()
		logger.Debugw("discarding stale result", "generation", generation, "current", d.generation)
		return d.state
	}

	d.setState(next)
	return next
}

// setState must be called with mu held.
func (d *Dashboard) setState(next State) {
	d.state = next
	metrics.Transitions.WithLabelValues(stateName(next)).Inc()
	logger.Debugw("state transition", "state", stateName(next), "generation", d.generation)
}

func reconcile(location Location, report Report) Loaded {
	forecast := make([]ForecastDay, 0, len(report.Daily))
	for _, daily := range report.Daily {
		forecast = append(forecast, ForecastDay{
			Timestamp:      daily.Date.Unix(),
			Date:           daily.Date,
			MaxTemperature: daily.MaxTemperature,
			MinTemperature: daily.MinTemperature,
			WeatherCode:    daily.WeatherCode,
			ConditionText:  ConditionText(daily.WeatherCode),
		})
	}
	sort.SliceStable(forecast, func(i, j int) bool {
		return forecast[i].Timestamp < forecast[j].Timestamp
	})

	return Loaded{
		Location: location,
		Current: CurrentConditions{
			Temperature:   report.Current.Temperature,
			Humidity:      report.Current.Humidity,
			WeatherCode:   report.Current.WeatherCode,
			ConditionText: ConditionText(report.Current.WeatherCode),
		},
		Forecast: forecast,
	}
}

// formatCoordinates stays comma-free so ShortName keeps both values.
func formatCoordinates(latitude, longitude float64) string {
	return fmt.Sprintf("%.4f %.4f", latitude, longitude)
}

func stateName(state State) string {
	switch state.(type) {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadedWithError:
		return "loaded_with_error"
	case DayExpanded:
		return "day_expanded"
	default:
		return "idle"
	}
}
