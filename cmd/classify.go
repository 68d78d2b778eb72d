package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/address-precision/internal/classify"
	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/internal/variant"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <address>",
	Short: "Classify one address offline (no provider calls)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("offline"); err != nil {
			return err
		}

		text := strings.Join(args, " ")
		rules, err := loadRules()
		if err != nil {
			return err
		}

		verdict := classify.NewClassifier(rules).Classify(text)
		printVerdict(cmd, text, verdict)

		rec := model.AddressRecord{Street: text}
		variants := variant.NewGenerator().Generate(rec, verdict)
		cmd.Println("variants:")
		for _, v := range variants {
			cmd.Printf("  %-14s %s\n", v.Strategy, v.Rendered)
		}
		return nil
	},
}

func printVerdict(cmd *cobra.Command, text string, v model.ApartmentVerdict) {
	cmd.Printf("address:        %s\n", text)
	cmd.Printf("is_apartment:   %t\n", v.IsApartment)
	cmd.Printf("apartment_type: %s\n", v.ApartmentType)
	if v.UnitToken != "" {
		cmd.Printf("unit_number:    %s\n", v.UnitToken)
	}
	cmd.Printf("confidence:     %d\n", v.Confidence)
	if v.MatchedPattern != "" {
		cmd.Printf("pattern:        %s\n", v.MatchedPattern)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
