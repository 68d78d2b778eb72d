package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/batch"
	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/internal/rowio"
)

var (
	batchOut         string
	batchMapping     string
	batchConcurrency int
	batchReport      string
	batchAggregate   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <input-file>",
	Short: "Process a CSV or XLSX file of addresses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mapping := rowio.ColumnMapping{}
		if batchMapping != "" {
			m, err := rowio.LoadMapping(batchMapping)
			if err != nil {
				return err
			}
			mapping = m
		}

		records, headers, err := rowio.ReadFile(args[0], mapping)
		if err != nil {
			return err
		}

		rules, err := loadRules()
		if err != nil {
			return err
		}
		client, cleanup, err := newGeocodeClient()
		if err != nil {
			return err
		}
		defer cleanup()

		concurrency := cfg.Batch.Concurrency
		if batchConcurrency > 0 {
			concurrency = batchConcurrency
		}

		orch := batch.New(client, rules, batch.Config{
			Concurrency:      concurrency,
			CheckConsistency: cfg.Batch.CheckConsistency,
		})

		results, stats, err := orch.Process(ctx, records)
		if err != nil {
			zap.L().Warn("batch interrupted", zap.Error(err))
		}

		if err := rowio.WriteCSV(batchOut, headers, results); err != nil {
			return err
		}
		zap.L().Info("output written", zap.String("path", batchOut))

		if batchReport != "" {
			report := buildReport(args[0], batchOut, stats)
			if batchAggregate {
				report.Buildings = batch.AggregateBuildings(results)
			}
			if err := writeReport(batchReport, report); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", batchReport))
		}

		cmd.Printf("processed %d rows: %d succeeded, %d partial, %d failed, %d conflicts\n",
			stats.Total, stats.Succeeded, stats.Partial, stats.Failed, stats.Conflicts)
		return nil
	},
}

// runReport is the JSON summary written next to the output file.
type runReport struct {
	InputFile        string                  `json:"input_file"`
	OutputFile       string                  `json:"output_file"`
	GeneratedAt      time.Time               `json:"generated_at"`
	Total            int                     `json:"total"`
	Apartments       int                     `json:"apartments"`
	ApartmentRate    float64                 `json:"apartment_rate"`
	Succeeded        int                     `json:"succeeded"`
	Partial          int                     `json:"partial"`
	Failed           int                     `json:"failed"`
	SuccessRate      float64                 `json:"success_rate"`
	Conflicts        int                     `json:"conflicts"`
	ProviderFailures int                     `json:"provider_failures"`
	MeanPrecision    float64                 `json:"mean_precision"`
	ElapsedSeconds   float64                 `json:"elapsed_seconds"`
	Buildings        []batch.BuildingSummary `json:"buildings,omitempty"`
}

func buildReport(in, out string, stats model.BatchStats) runReport {
	return runReport{
		InputFile:        in,
		OutputFile:       out,
		GeneratedAt:      time.Now().UTC(),
		Total:            stats.Total,
		Apartments:       stats.Apartments,
		ApartmentRate:    stats.ApartmentRate(),
		Succeeded:        stats.Succeeded,
		Partial:          stats.Partial,
		Failed:           stats.Failed,
		SuccessRate:      stats.SuccessRate(),
		Conflicts:        stats.Conflicts,
		ProviderFailures: stats.ProviderFailures,
		MeanPrecision:    stats.MeanPrecision,
		ElapsedSeconds:   stats.Elapsed.Seconds(),
	}
}

func writeReport(path string, report runReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "output.csv", "output CSV path")
	batchCmd.Flags().StringVar(&batchMapping, "mapping", "", "YAML column-mapping file")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "worker count (default from config)")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "write a JSON run report to this path")
	batchCmd.Flags().BoolVar(&batchAggregate, "aggregate", false, "include per-building unit counts in the report")
	rootCmd.AddCommand(batchCmd)
}
