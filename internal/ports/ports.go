// Package ports declares the outbound interfaces the services depend on.
package ports

import (
	"context"

	"duka/internal/core"
)

// Ports for outbound adapters.
type (
	// DatasetReader supplies the 12-month income dataset.
	DatasetReader interface {
		ReadDataset(ctx context.Context) ([]core.MonthlyRecord, error)
	}

	// KVStore is the key-value storage the state stores persist into.
	KVStore interface {
		// Get returns found=false without error when the key is absent.
		Get(ctx context.Context, key string) (value []byte, found bool, err error)
		Set(ctx context.Context, key string, value []byte) error
		Delete(ctx context.Context, key string) error
	}

	// EventPublisher announces status changes of orders and tickets.
	EventPublisher interface {
		PublishStatusChanged(ctx context.Context, kind, id, from, to string) error
	}

	// ProductFetcher loads the product catalog.
	ProductFetcher interface {
		FetchProducts(ctx context.Context) ([]core.Product, error)
	}

	// ReportExporter writes a chart series somewhere outside the process.
	ReportExporter interface {
		ExportSeries(ctx context.Context, g core.Granularity, series []core.ChartRecord) error
	}
)
