package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/address-precision/internal/batch"
	"github.com/sells-group/address-precision/internal/model"
)

var (
	singleCity  string
	singleState string
	singleZip   string
)

var singleCmd = &cobra.Command{
	Use:   "single <street>",
	Short: "Run one address end to end: classify, optimize, cross-check",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rules, err := loadRules()
		if err != nil {
			return err
		}
		client, cleanup, err := newGeocodeClient()
		if err != nil {
			return err
		}
		defer cleanup()

		orch := batch.New(client, rules, batch.Config{
			Concurrency:      1,
			CheckConsistency: cfg.Batch.CheckConsistency,
		})

		rec := model.AddressRecord{
			Street:  strings.Join(args, " "),
			City:    singleCity,
			State:   singleState,
			ZipCode: singleZip,
		}
		results, _, err := orch.Process(ctx, []model.AddressRecord{rec})
		if err != nil {
			return err
		}

		r := results[0]
		printVerdict(cmd, rec.Street, r.Verdict)

		if r.Optimization != nil {
			cmd.Println("candidates:")
			for _, cand := range r.Optimization.All {
				if cand.Success {
					cmd.Printf("  %-14s score=%-3d %-18s %s\n",
						cand.Variant.Strategy, cand.PrecisionScore, cand.LocationType, cand.PlaceKey)
				} else {
					cmd.Printf("  %-14s failed: %s\n", cand.Variant.Strategy, cand.Error)
				}
			}
			sel := r.Optimization.Selected
			if sel.Success {
				cmd.Printf("selected:       %s (score %d)\n", sel.Variant.Strategy, sel.PrecisionScore)
				cmd.Printf("place_key:      %s\n", sel.PlaceKey)
			}
		}
		if r.Consistency != nil && r.Consistency.ReverseAddress != nil {
			cmd.Printf("consistency:    %.3f conflict=%t\n", r.Consistency.Similarity, r.Consistency.Conflict)
		}
		cmd.Printf("status:         %s\n", r.Status)
		return nil
	},
}

func init() {
	singleCmd.Flags().StringVar(&singleCity, "city", "", "city")
	singleCmd.Flags().StringVar(&singleState, "state", "", "state")
	singleCmd.Flags().StringVar(&singleZip, "zip", "", "zip code")
	rootCmd.AddCommand(singleCmd)
}
