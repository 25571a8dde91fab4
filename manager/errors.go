package manager

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("City not found")
	ErrWeatherFetch = errors.New("Failed to fetch weather data")
	ErrNoSuchDay    = errors.New("no such forecast day")
)

// UserMessage strips wrapped detail so only the sentinel text reaches the view.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrWeatherFetch):
		return ErrWeatherFetch.Error()
	default:
		return err.Error()
	}
}
