// Package services orchestrates the dashboard: income metrics over the
// dataset reader, and the order and ticket books over their state stores.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/metrics"
	"duka/internal/ports"
)

// DashboardService runs the metrics pipeline over the stored dataset.
// Every call reads the dataset afresh; nothing is cached.
type DashboardService struct {
	reader      ports.DatasetReader
	defaultSeed uint64
	logger      *log.Logger
}

func NewDashboardService(reader ports.DatasetReader, defaultSeed uint64, logger *log.Logger) *DashboardService {
	return &DashboardService{
		reader:      reader,
		defaultSeed: defaultSeed,
		logger:      logger.WithComponent(log.ComponentMetrics),
	}
}

// Summary is the dashboard header: one report per granularity.
type Summary struct {
	Seed    uint64                              `json:"seed"`
	Reports map[core.Granularity]metrics.Report `json:"reports"`
}

func (s *DashboardService) seed(seed *uint64) uint64 {
	if seed == nil {
		return s.defaultSeed
	}
	return *seed
}

func (s *DashboardService) dataset(ctx context.Context) ([]core.MonthlyRecord, error) {
	ds, err := s.reader.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ds, nil
}

// Report builds the full view for g. A nil seed uses the configured one.
func (s *DashboardService) Report(ctx context.Context, g core.Granularity, seed *uint64) (metrics.Report, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return metrics.Report{}, err
	}
	sd := s.seed(seed)
	report, err := metrics.BuildReport(ds, g, metrics.NewRandJitter(sd))
	if err != nil {
		return metrics.Report{}, err
	}
	s.logger.DebugContext(ctx, "Report built",
		log.FieldGranularity, g,
		log.FieldSeed, sd,
		log.FieldCount, len(report.View))
	return report, nil
}

// Summary builds the four granularities concurrently. Each one gets its own
// jitter source from the same seed, so the result does not depend on
// scheduling.
func (s *DashboardService) Summary(ctx context.Context, seed *uint64) (Summary, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return Summary{}, err
	}
	sd := s.seed(seed)
	grans := core.Granularities()
	reports := make([]metrics.Report, len(grans))

	g, _ := errgroup.WithContext(ctx)
	for i, gran := range grans {
		g.Go(func() error {
			r, err := metrics.BuildReport(ds, gran, metrics.NewRandJitter(sd))
			if err != nil {
				return fmt.Errorf("%s report: %w", gran, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := Summary{Seed: sd, Reports: make(map[core.Granularity]metrics.Report, len(grans))}
	for i, gran := range grans {
		out.Reports[gran] = reports[i]
	}
	return out, nil
}

// Delta returns the comparison delta of one field for g.
func (s *DashboardService) Delta(ctx context.Context, field core.Field, g core.Granularity, seed *uint64) (metrics.Delta, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return metrics.Delta{}, err
	}
	cmp, err := metrics.PeriodComparison(ds, g, metrics.NewRandJitter(s.seed(seed)))
	if err != nil {
		return metrics.Delta{}, err
	}
	return cmp.DeltaFor(field), nil
}

// IncomeChart returns the monthly chart series.
func (s *DashboardService) IncomeChart(ctx context.Context) ([]core.ChartRecord, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	view, err := metrics.SelectPeriod(ds, core.Monthly, metrics.NoJitter{})
	if err != nil {
		return nil, err
	}
	return metrics.ToChartSeries(view), nil
}

// MonthComparison compares month (1-12) with the month before it.
func (s *DashboardService) MonthComparison(ctx context.Context, month int) (metrics.MonthComparison, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return metrics.MonthComparison{}, err
	}
	return metrics.MonthlyComparison(ds, month)
}

// YearToDate sums income through month (1-12).
func (s *DashboardService) YearToDate(ctx context.Context, month int) (int64, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return 0, err
	}
	return metrics.YearToDate(ds, month)
}

// Live returns a randomized copy of the dataset, as the live dashboard
// refresh shows.
func (s *DashboardService) Live(ctx context.Context, seed *uint64) ([]core.MonthlyRecord, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateDataset(ds); err != nil {
		return nil, err
	}
	return metrics.Randomize(ds, metrics.NewRand(s.seed(seed))), nil
}
