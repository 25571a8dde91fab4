package manager

import (
	"slices"
)

// State is one of Idle, Loading, Loaded, LoadedWithError or DayExpanded.
type State interface {
	state()
}

type Idle struct{}

type Loading struct {
	Query string
}

type Loaded struct {
	Location Location
	Current  CurrentConditions
	Forecast []ForecastDay
}

// Day looks up a forecast day by its timestamp in seconds.
func (l Loaded) Day(timestamp int64) (ForecastDay, bool) {
	for _, day := range l.Forecast {
		if day.Timestamp == timestamp {
			return day, true
		}
	}
	return ForecastDay{}, false
}

type LoadedWithError struct {
	Query   string
	Message string
}

type DayExpanded struct {
	Loaded
	SelectedDayMillis int64
	Day               ForecastDay
	Hourly            HourlyResult
}

func (Idle) state()            {}
func (Loading) state()         {}
func (Loaded) state()          {}
func (LoadedWithError) state() {}
func (DayExpanded) state()     {}

// Snapshot is a flattened, copy-safe read model of a State.
type Snapshot struct {
	Generation        uint64             `json:"generation"`
	Query             string             `json:"query,omitempty"`
	Loading           bool               `json:"loading"`
	ErrorMessage      string             `json:"errorMessage,omitempty"`
	Location          *Location          `json:"location,omitempty"`
	Current           *CurrentConditions `json:"current,omitempty"`
	Forecast          []ForecastDay      `json:"forecast,omitempty"`
	SelectedDayMillis *int64             `json:"selectedDayTimestamp,omitempty"`
	SelectedDay       *ForecastDay       `json:"selectedDay,omitempty"`
	Hourly            *HourlyResult      `json:"hourly,omitempty"`
}

// ShowHourly reports whether the hourly panel replaces the forecast strip.
func (s Snapshot) ShowHourly() bool {
	return s.SelectedDayMillis != nil
}

func snapshotOf(state State, query string, generation uint64) Snapshot {
	snap := Snapshot{Generation: generation, Query: query}

	fill := func(l Loaded) {
		location, current := l.Location, l.Current
		snap.Location = &location
		snap.Current = &current
		snap.Forecast = slices.Clone(l.Forecast)
	}

	switch s := state.(type) {
	case Loading:
		snap.Loading = true
	case Loaded:
		fill(s)
	case LoadedWithError:
		snap.ErrorMessage = s.Message
	case DayExpanded:
		fill(s.Loaded)
		millis, day := s.SelectedDayMillis, s.Day
		hourly := HourlyResult{Status: s.Hourly.Status, Samples: slices.Clone(s.Hourly.Samples)}
		snap.SelectedDayMillis = &millis
		snap.SelectedDay = &day
		snap.Hourly = &hourly
	}

	return snap
}
