package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/bullionwatch/collector/internal/domain"
)

// PostgresStore persists the singleton latest-rates record.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertLatest merge-upserts the snapshot against the singleton row:
// create if absent, otherwise overwrite only the named columns. Columns
// outside this statement are preserved, and updated_at is assigned
// server-side so concurrent runs converge on last-writer-wins.
func (s *PostgresStore) UpsertLatest(ctx context.Context, snap *domain.RatesSnapshot) error {
	const query = `
		INSERT INTO live_rates (
			id, gold_price, gold_bid, gold_ask,
			silver_price, silver_bid, silver_ask,
			source, client_time, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			gold_price   = EXCLUDED.gold_price,
			gold_bid     = EXCLUDED.gold_bid,
			gold_ask     = EXCLUDED.gold_ask,
			silver_price = EXCLUDED.silver_price,
			silver_bid   = EXCLUDED.silver_bid,
			silver_ask   = EXCLUDED.silver_ask,
			source       = EXCLUDED.source,
			client_time  = EXCLUDED.client_time,
			updated_at   = now()
	`

	_, err := s.db.ExecContext(ctx, query,
		domain.LiveRatesKey,
		snap.GoldPrice, snap.GoldBid, snap.GoldAsk,
		snap.SilverPrice, snap.SilverBid, snap.SilverAsk,
		snap.Source, snap.ClientTime,
	)
	if err != nil {
		return fmt.Errorf("upsert live rates: %w", err)
	}
	return nil
}

// Latest returns the current record, or nil when no run has ever written.
func (s *PostgresStore) Latest(ctx context.Context) (*domain.RatesSnapshot, error) {
	const query = `
		SELECT gold_price, gold_bid, gold_ask,
		       silver_price, silver_bid, silver_ask,
		       source, client_time, updated_at
		FROM live_rates
		WHERE id = $1
	`

	var snap domain.RatesSnapshot
	err := s.db.QueryRowContext(ctx, query, domain.LiveRatesKey).Scan(
		&snap.GoldPrice, &snap.GoldBid, &snap.GoldAsk,
		&snap.SilverPrice, &snap.SilverBid, &snap.SilverAsk,
		&snap.Source, &snap.ClientTime, &snap.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query live rates: %w", err)
	}
	return &snap, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
