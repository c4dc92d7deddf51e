package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"duka/internal/cli"
	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/metrics"
	"duka/internal/ports"
	"duka/internal/services"
)

type reportFlags struct {
	granularity string
	seed        uint64
	seedSet     bool
	field       string
	export      bool
	json        bool
}

// env supplies the dataset and the exporter. Tests swap in fakes.
type env struct {
	dataset  func(ctx context.Context) (ports.DatasetReader, func() error, error)
	exporter func(ctx context.Context) (ports.ReportExporter, error)
	seed     uint64
	logger   *log.Logger
}

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultEnv() env {
	cfg, logger := cli.LoadAndValidateConfig()
	return env{
		seed:   cfg.Seed,
		logger: logger,
		dataset: func(ctx context.Context) (ports.DatasetReader, func() error, error) {
			be := cli.OpenBackend(ctx, logger, cfg)
			return be.Store, be.Cleanup, nil
		},
		exporter: func(ctx context.Context) (ports.ReportExporter, error) {
			exp, err := cli.OpenExporter(ctx, cfg)
			if err != nil || exp == nil {
				return nil, err
			}
			return exp, nil
		},
	}
}

func newRootCmd(e env) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "duka-report",
		Short: "Print the income report for one granularity",
		Long: `Selects the period view of the 12-month income dataset, prints it with
the aggregated totals and the comparison of its last two entries, and
optionally writes the chart series to Google Sheets.`,
		Args:          cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.seedSet = cmd.Flags().Changed("seed")
			return runReport(cmd.Context(), cmd.OutOrStdout(), e, f)
		},
	}
	cmd.Flags().StringVarP(&f.granularity, "granularity", "g", string(core.Monthly), "daily, weekly, monthly or yearly")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "jitter seed for the synthetic daily and weekly views (default SEED)")
	cmd.Flags().StringVar(&f.field, "field", "", "only print the delta of this field")
	cmd.Flags().BoolVar(&f.export, "export", false, "write the chart series to the configured spreadsheet")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the report as JSON")
	return cmd
}

func runReport(ctx context.Context, out io.Writer, e env, f reportFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, err := core.ParseGranularity(f.granularity)
	if err != nil {
		return err
	}
	var seed *uint64
	if f.seedSet {
		seed = &f.seed
	}

	reader, cleanup, err := e.dataset(ctx)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	dash := services.NewDashboardService(reader, e.seed, e.logger)

	if f.field != "" {
		field, err := core.ParseField(f.field)
		if err != nil {
			return err
		}
		d, err := dash.Delta(ctx, field, g, seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s: %s\n", g, field, d)
		return nil
	}

	report, err := dash.Report(ctx, g, seed)
	if err != nil {
		return err
	}
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if f.export {
		exp, err := e.exporter(ctx)
		if err != nil {
			return fmt.Errorf("open exporter: %w", err)
		}
		if exp == nil {
			return fmt.Errorf("export requested but GOOGLE_SPREADSHEET_ID is not set")
		}
		if err := exp.ExportSeries(ctx, g, report.Series); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %d rows\n", len(report.Series))
	}
	return nil
}

func printReport(out io.Writer, r metrics.Report) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Period\tIncome\tExpenses\tProfit\tOrders\tNew customers\tRefunds\tCumulative\t")
	for _, c := range r.Series {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t\n",
			c.Period, core.FormatWhole(c.Income), core.FormatWhole(c.Expenses), core.FormatWhole(c.Profit),
			c.Orders, c.NewCustomers, c.Refunds, core.FormatWhole(c.CumulativeTotal))
	}
	t := r.Totals
	fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t%d\t%d\t%d\t\t\n",
		core.FormatWhole(t.Income), core.FormatWhole(t.Expenses), core.FormatWhole(t.Profit),
		t.Orders, t.NewCustomers, t.Refunds)
	tw.Flush()

	fmt.Fprintln(out)
	for _, d := range r.Comparison.Deltas {
		fmt.Fprintf(out, "%-13s %s\n", d.Field, d)
	}
}
