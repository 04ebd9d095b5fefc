package ports

import (
	"context"

	"github.com/bullionwatch/collector/internal/domain"
)

// RateProvider obtains a current quote for a single instrument from the
// upstream quote API.
type RateProvider interface {
	// Quote fetches and validates one instrument quote. The returned
	// reading always has bid and ask populated.
	Quote(ctx context.Context, symbol string) (domain.QuoteReading, error)
}

// RatesStore persists the singleton latest-rates record.
type RatesStore interface {
	// UpsertLatest merge-upserts the snapshot against the singleton
	// record: create if absent, overwrite only the supplied fields.
	UpsertLatest(ctx context.Context, snap *domain.RatesSnapshot) error

	// Latest returns the current record, or nil when no run has ever
	// written one.
	Latest(ctx context.Context) (*domain.RatesSnapshot, error)

	Ping(ctx context.Context) error
}

// RatesCache mirrors the latest snapshot for fast reads. A cache failure
// must never fail a run.
type RatesCache interface {
	SetLatest(ctx context.Context, snap *domain.RatesSnapshot) error

	// Latest returns nil on a cache miss.
	Latest(ctx context.Context) (*domain.RatesSnapshot, error)

	Ping(ctx context.Context) error
}

// HistoryRecorder appends successful runs to an audit log.
type HistoryRecorder interface {
	Record(ctx context.Context, snap *domain.RatesSnapshot) error

	// Flush ensures all buffered rows are written to storage
	Flush(ctx context.Context) error

	// Close finalizes the recording session and releases resources
	Close() error
}
