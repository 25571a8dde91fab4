// Package view renders dashboard snapshots as HTML and as plain text.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"weatherdash/manager"
)

const (
	NoHourlyData = "No hourly data available. Please try again later."

	todayLayout = "Monday, January 2"
	dateLayout  = "1/2/2006"
)

//go:embed templates/*.html
var templates embed.FS

var page = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"temp":          Temperature,
	"date":          func(t time.Time) string { return t.Format(dateLayout) },
	"weekday":       func(t time.Time) string { return t.Format("Mon") },
	"noHourly":      func() string { return NoHourlyData },
	"hourlyPending": hourlyPending,
}).ParseFS(templates, "templates/dashboard.html"))

type pageData struct {
	manager.Snapshot
	Today     string
	Geolocate bool
}

type HTMLOptions struct {
	Now time.Time
	// Geolocate embeds the one-shot browser geolocation request.
	Geolocate bool
}

func HTML(w io.Writer, snapshot manager.Snapshot, opts HTMLOptions) error {
	return page.Execute(w, pageData{
		Snapshot:  snapshot,
		Today:     opts.Now.Format(todayLayout),
		Geolocate: opts.Geolocate,
	})
}

// Temperature formats a reading with the shortest exact decimal form.
func Temperature(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func hourlyPending(result *manager.HourlyResult) bool {
	return result == nil || result.Status == manager.HourlyNotAttempted
}

// Text writes the same content as HTML for a terminal.
func Text(w io.Writer, snapshot manager.Snapshot, now time.Time) error {
	p := &printer{w: w}

	if snapshot.Loading {
		p.printf("Loading...\n")
	}
	if snapshot.ErrorMessage != "" {
		p.printf("ERROR\t\t %s\n", snapshot.ErrorMessage)
	}

	if snapshot.Current != nil && snapshot.Location != nil {
		p.printf("LOCATION\t %s\n", snapshot.Location.ShortName())
		p.printf("DATE\t\t %s\n", now.Format(todayLayout))
		p.printf("TEMP\t\t %s°C\n", Temperature(snapshot.Current.Temperature))
		p.printf("CONDITIONS\t %s\n", snapshot.Current.ConditionText)
		p.printf("HUMIDITY\t %s%%\n", Temperature(snapshot.Current.Humidity))
	}

	switch {
	case snapshot.ShowHourly():
		p.printf("\nHourly Forecast for %s\n", snapshot.SelectedDay.Date.Format(dateLayout))
		switch {
		case hourlyPending(snapshot.Hourly):
			p.printf("Loading...\n")
		case len(snapshot.Hourly.Samples) == 0:
			p.printf("%s\n", NoHourlyData)
		default:
			p.printf("TIME\t\t")
			for _, sample := range snapshot.Hourly.Samples {
				p.printf("%8s  ", sample.LocalTimeLabel)
			}
			p.printf("\nTEMP\t\t")
			for _, sample := range snapshot.Hourly.Samples {
				p.printf("%8s  ", Temperature(sample.Temperature)+"°C")
			}
			p.printf("\n")
		}
	case len(snapshot.Forecast) > 0:
		p.printf("\n7-Day Forecast\n")
		for _, day := range snapshot.Forecast {
			p.printf("%s  %-10s %6s°C  %s\n",
				day.Date.Format("Mon"),
				day.Date.Format(dateLayout),
				Temperature(day.MaxTemperature),
				day.ConditionText,
			)
		}
	}

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
