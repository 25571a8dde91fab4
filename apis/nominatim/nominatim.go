package nominatim

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"weatherdash/apis"
	"weatherdash/manager"
)

const (
	serviceName    = "nominatim"
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
)

func New(opts apis.Options) *geocoding {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &geocoding{
		client: apis.NewClient(serviceName, opts),
	}
}

type geocoding struct {
	client *resty.Client
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for query. Every failure, including a
// transport error, is reported as manager.ErrNotFound.
func (g geocoding) Search(ctx context.Context, query string) (manager.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return manager.Location{}, manager.ErrNotFound
	}

	params := map[string]string{
		"q":      query,
		"format": "json",
		"limit":  "1",
	}

	places := make([]place, 0, 1)
	if err := g.get(ctx, "/search", params, &places); err != nil {
		return manager.Location{}, fmt.Errorf("%w: %v", manager.ErrNotFound, err)
	}

	if len(places) == 0 {
		return manager.Location{}, manager.ErrNotFound
	}

	location, err := places[0].location()
	if err != nil {
		return manager.Location{}, fmt.Errorf("%w: %v", manager.ErrNotFound, err)
	}

	return location, nil
}

func (g geocoding) Reverse(ctx context.Context, latitude, longitude float64) (manager.Location, error) {
	params := map[string]string{
		"lat":    strconv.FormatFloat(latitude, 'f', -1, 64),
		"lon":    strconv.FormatFloat(longitude, 'f', -1, 64),
		"format": "json",
	}

	var result struct {
		place
		Error string `json:"error"`
	}
	if err := g.get(ctx, "/reverse", params, &result); err != nil {
		return manager.Location{}, fmt.Errorf("%w: %v", manager.ErrNotFound, err)
	}

	if result.Error != "" || result.DisplayName == "" {
		return manager.Location{}, manager.ErrNotFound
	}

	location, err := result.place.location()
	if err != nil {
		return manager.Location{}, fmt.Errorf("%w: %v", manager.ErrNotFound, err)
	}

	return location, nil
}

func (g geocoding) get(ctx context.Context, path string, params map[string]string, result any) error {
	response, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		ForceContentType("application/json").
		Get(path)
	if err != nil {
		return err
	}

	if !response.IsSuccess() {
		return apis.StatusError(response)
	}

	return nil
}

func (p place) location() (manager.Location, error) {
	latitude, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return manager.Location{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}

	longitude, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return manager.Location{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	return manager.Location{
		Latitude:    latitude,
		Longitude:   longitude,
		DisplayName: p.DisplayName,
	}, nil
}
