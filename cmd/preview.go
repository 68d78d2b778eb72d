package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/address-precision/internal/rowio"
)

var previewRows int

var previewCmd = &cobra.Command{
	Use:   "preview <input-file>",
	Short: "Show the first rows of an input file without processing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("offline"); err != nil {
			return err
		}
		headers, rows, err := rowio.PreviewFile(args[0], previewRows)
		if err != nil {
			return err
		}
		cmd.Println(strings.Join(headers, " | "))
		for _, row := range rows {
			cmd.Println(strings.Join(row, " | "))
		}
		cmd.Printf("%d rows shown\n", len(rows))
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "number of rows to show")
	rootCmd.AddCommand(previewCmd)
}
