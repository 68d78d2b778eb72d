package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/address-precision/internal/model"
)

// probeAddress is a stable, well known rooftop address used to verify
// that the configured geocoding credentials work end to end.
var probeAddress = model.AddressRecord{
	Street:  "1600 Pennsylvania Ave NW",
	City:    "Washington",
	State:   "DC",
	ZipCode: "20500",
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Verify geocoding connectivity and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}
		client, cleanup, err := newGeocodeClient()
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		result, err := client.Resolve(cmd.Context(),
			probeAddress.Street+", "+probeAddress.City+", "+probeAddress.State+" "+probeAddress.ZipCode)
		if err != nil {
			return err
		}
		cmd.Printf("ok: %s (%s) in %s\n", result.PlaceKey, result.LocationType, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
