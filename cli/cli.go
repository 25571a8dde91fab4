package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weatherdash/apis"
	"weatherdash/apis/nominatim"
	"weatherdash/apis/openmeteo"
	"weatherdash/config"
	"weatherdash/logger"
	"weatherdash/manager"
	"weatherdash/view"
)

type app struct {
	config config.Config
	now    func() time.Time
}

// newDashboard wires a Dashboard to the configured upstream services.
func (a *app) newDashboard() *manager.Dashboard {
	geocoding := nominatim.New(apis.Options{
		BaseURL:   a.config.Geocoding.BaseURL,
		UserAgent: a.config.HTTP.UserAgent,
		Timeout:   a.config.HTTP.Timeout,
	})
	weather := openmeteo.New(openmeteo.Options{
		Options: apis.Options{
			BaseURL:   a.config.Weather.BaseURL,
			UserAgent: a.config.HTTP.UserAgent,
			Timeout:   a.config.HTTP.Timeout,
		},
		PastDays:     a.config.Weather.PastDays,
		ForecastDays: a.config.Weather.ForecastDays,
	})

	dashboard := manager.New(geocoding, weather, weather)
	dashboard.SetDefaultLocation(a.config.Dashboard.DefaultLocation)
	return dashboard
}

// New builds the root command. defaults is the embedded YAML configuration.
func New(defaults []byte) (*cobra.Command, error) {
	if len(defaults) == 0 {
		return nil, errors.New("empty default configuration")
	}

	a := &app{now: time.Now}

	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "weatherdash",
		Short:         "Weather dashboard for current conditions, a 7-day forecast and hourly detail",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(defaults, configPath)
			if err != nil {
				return err
			}
			if debug {
				cfg.Log.Debug = true
			}
			if err := logger.Init(cfg.Log.Debug); err != nil {
				return err
			}
			a.config = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding the built-in configuration")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newShowCommand(a),
		newHourlyCommand(a),
		newLocateCommand(a),
		newServeCommand(a),
	)

	return cmd, nil
}

// render writes the dashboard and turns an error state into a command error.
func (a *app) render(cmd *cobra.Command, dashboard *manager.Dashboard) error {
	snapshot := dashboard.Snapshot()
	if err := view.Text(cmd.OutOrStdout(), snapshot, a.now()); err != nil {
		return err
	}
	if snapshot.ErrorMessage != "" {
		return fmt.Errorf("%s", snapshot.ErrorMessage)
	}
	return nil
}
