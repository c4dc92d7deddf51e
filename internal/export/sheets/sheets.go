// Package sheets exports chart series to a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"duka/internal/core"
	"duka/internal/ports"
)

// Header is the first row written above the series.
var Header = []any{"Period", "Income", "Expenses", "Profit", "Orders", "New Customers", "Refunds", "Cumulative Income"}

// Options configure an Exporter. One of CredentialsJSON or CredentialsFile
// is required unless ClientOptions supply their own authentication.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ClientOptions   []goption.ClientOption
}

// Exporter replaces the contents of one tab with a chart series.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportExporter = (*Exporter)(nil)

// New builds the Sheets service from service account credentials.
func New(ctx context.Context, opts Options) (*Exporter, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Income"
	}

	clientOpts := append([]goption.ClientOption(nil), opts.ClientOptions...)
	if len(clientOpts) == 0 {
		creds, err := credentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Exporter{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: opts.SheetName}, nil
}

func credentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// quoteSheet quotes a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Rows renders the header and one row per record.
func Rows(series []core.ChartRecord) [][]any {
	rows := make([][]any, 0, len(series)+1)
	rows = append(rows, Header)
	for _, r := range series {
		rows = append(rows, []any{
			r.Period, r.Income, r.Expenses, r.Profit,
			r.Orders, r.NewCustomers, r.Refunds, r.CumulativeTotal,
		})
	}
	return rows
}

// ExportSeries clears the tab and writes the series from A1.
func (e *Exporter) ExportSeries(ctx context.Context, g core.Granularity, series []core.ChartRecord) error {
	start := time.Now()
	tab := quoteSheet(e.sheetName)

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, tab+"!A:H", &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", e.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: Rows(series)}
	resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Series exported to sheet",
		"sheet", e.sheetName,
		"granularity", g,
		"rows", resp.UpdatedRows,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
