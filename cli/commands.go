package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"weatherdash/manager"
	"weatherdash/server"
)

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [city]",
		Short: "Show current conditions and the 7-day forecast",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := a.newDashboard()
			if len(args) == 0 {
				dashboard.Start(cmd.Context())
			} else {
				dashboard.Search(cmd.Context(), args[0])
			}
			return a.render(cmd, dashboard)
		},
	}
}

func newHourlyCommand(a *app) *cobra.Command {
	var day int

	cmd := &cobra.Command{
		Use:   "hourly <city>",
		Short: "Show hourly temperatures for one forecast day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := a.newDashboard()

			loaded, ok := dashboard.Search(cmd.Context(), strings.Join(args, " ")).(manager.Loaded)
			if !ok {
				return a.render(cmd, dashboard)
			}
			if day < 0 || day >= len(loaded.Forecast) {
				return fmt.Errorf("--day must be between 0 and %d", len(loaded.Forecast)-1)
			}

			if _, err := dashboard.SelectDay(cmd.Context(), loaded.Forecast[day].Timestamp); err != nil {
				return err
			}
			return a.render(cmd, dashboard)
		},
	}

	cmd.Flags().IntVar(&day, "day", 0, "forecast day index, 0 is today")

	return cmd
}

func newLocateCommand(a *app) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show the dashboard for coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dashboard := a.newDashboard()
			dashboard.Locate(cmd.Context(), lat, lon)
			return a.render(cmd, dashboard)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func newServeCommand(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.config.Dashboard.Listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.newDashboard, server.Options{
				SessionTTL:     a.config.Dashboard.SessionTTL,
				AllowedOrigins: a.config.Dashboard.AllowedOrigins,
			})
			return srv.Run(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides dashboard.listen")

	return cmd
}
