package batch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/address-precision/internal/classify"
	"github.com/sells-group/address-precision/internal/consistency"
	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/internal/optimize"
	"github.com/sells-group/address-precision/internal/variant"
	"github.com/sells-group/address-precision/pkg/geocode"
)

// Config tunes one batch run.
type Config struct {
	Concurrency      int
	CheckConsistency bool
}

// Orchestrator drives the full pipeline for a set of address records:
// classify, generate variants, optimize precision, cross-check consistency.
type Orchestrator struct {
	classifier *classify.Classifier
	generator  *variant.Generator
	optimizer  *optimize.Optimizer
	checker    *consistency.Checker
	client     geocode.Client
	cfg        Config
}

// New builds an orchestrator over the given provider client and rule table.
func New(client geocode.Client, rules classify.Rules, cfg Config) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Orchestrator{
		classifier: classify.NewClassifier(rules),
		generator:  variant.NewGenerator(),
		optimizer:  optimize.NewOptimizer(),
		checker:    consistency.NewChecker(),
		client:     client,
		cfg:        cfg,
	}
}

type counters struct {
	apartments       atomic.Int64
	succeeded        atomic.Int64
	partial          atomic.Int64
	failed           atomic.Int64
	conflicts        atomic.Int64
	providerFailures atomic.Int64
	precisionSum     atomic.Int64
	precisionCount   atomic.Int64
}

// Process runs every record through the pipeline with bounded concurrency.
// Output order matches input order and every input record yields exactly one
// result; provider failures degrade a row, never the batch. Cancelling the
// context stops dispatch of further rows.
func (o *Orchestrator) Process(ctx context.Context, records []model.AddressRecord) ([]model.MergedResult, model.BatchStats, error) {
	start := time.Now()
	results := make([]model.MergedResult, len(records))
	var c counters

	zap.L().Info("batch started",
		zap.Int("records", len(records)),
		zap.Int("concurrency", o.cfg.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)

	for i := range records {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = model.MergedResult{
					Record:  records[i],
					Verdict: model.ApartmentVerdict{ApartmentType: model.ApartmentTypeUnknown},
					Status:  model.StatusFailed,
					Error:   gctx.Err().Error(),
				}
				c.failed.Add(1)
				return gctx.Err()
			default:
			}
			results[i] = o.processOne(gctx, records[i], &c)
			return nil
		})
	}

	err := g.Wait()
	stats := o.stats(len(records), &c, time.Since(start))

	zap.L().Info("batch finished",
		zap.Int("total", stats.Total),
		zap.Int("apartments", stats.Apartments),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("conflicts", stats.Conflicts),
		zap.Duration("elapsed", stats.Elapsed))

	return results, stats, err
}

func (o *Orchestrator) processOne(ctx context.Context, rec model.AddressRecord, c *counters) model.MergedResult {
	if strings.TrimSpace(rec.Street) == "" {
		c.failed.Add(1)
		return model.MergedResult{
			Record:  rec,
			Verdict: model.ApartmentVerdict{ApartmentType: model.ApartmentTypeUnknown},
			Status:  model.StatusFailed,
			Error:   "missing street text",
		}
	}

	verdict := o.classifier.Classify(rec.Street)
	if verdict.IsApartment {
		c.apartments.Add(1)
	}

	variants := o.generator.Generate(rec, verdict)
	opt := o.optimizer.Optimize(ctx, variants, o.client.Resolve)
	c.providerFailures.Add(int64(opt.StrategiesTested - opt.StrategiesSucceeded))

	result := model.MergedResult{
		Record:       rec,
		Verdict:      verdict,
		Optimization: &opt,
	}

	if !opt.Selected.Success {
		// Classification stands even when every variant failed to geocode;
		// the row is degraded, not failed.
		c.partial.Add(1)
		result.Status = model.StatusPartial
		result.Error = opt.Selected.Error
		return result
	}

	c.precisionSum.Add(int64(opt.Selected.PrecisionScore))
	c.precisionCount.Add(1)

	if o.cfg.CheckConsistency {
		report := o.checker.Check(ctx, rec, opt.Selected.PlaceKey, o.client.ResolveKey)
		result.Consistency = &report
		if report.Conflict {
			c.conflicts.Add(1)
		}
		if report.ReverseAddress == nil {
			// Reverse resolution failed; the row keeps its place key but
			// consistency could not be verified.
			c.providerFailures.Add(1)
			c.partial.Add(1)
			result.Status = model.StatusPartial
			return result
		}
	}

	c.succeeded.Add(1)
	result.Status = model.StatusSuccess
	return result
}

func (o *Orchestrator) stats(total int, c *counters, elapsed time.Duration) model.BatchStats {
	stats := model.BatchStats{
		Total:            total,
		Apartments:       int(c.apartments.Load()),
		Succeeded:        int(c.succeeded.Load()),
		Partial:          int(c.partial.Load()),
		Failed:           int(c.failed.Load()),
		Conflicts:        int(c.conflicts.Load()),
		ProviderFailures: int(c.providerFailures.Load()),
		Elapsed:          elapsed,
	}
	if n := c.precisionCount.Load(); n > 0 {
		stats.MeanPrecision = float64(c.precisionSum.Load()) / float64(n)
	}
	return stats
}
