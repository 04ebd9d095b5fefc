package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// LiveRatesKey is the fixed identifier of the singleton snapshot record.
const LiveRatesKey = "live_rates"

// ErrZeroPrice marks a quote whose last-trade price is absent or zero.
// Such a reading must never reach the store.
var ErrZeroPrice = errors.New("zero or missing last-trade price")

// QuoteReading is one validated quote for a single instrument.
// Bid and Ask are never zero-valued placeholders: when the upstream
// response omits them they carry the last-trade price instead.
type QuoteReading struct {
	Symbol    string
	Price     decimal.Decimal
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	FetchedAt time.Time
}

// Validate enforces the non-zero price invariant.
func (q QuoteReading) Validate() error {
	if q.Price.IsZero() || q.Price.IsNegative() {
		return ErrZeroPrice
	}
	return nil
}

// RatesSnapshot is the persisted "latest rates" record. One row per
// deployment, keyed by LiveRatesKey, overwritten by merge on every
// successful run. UpdatedAt is assigned by the store on write;
// ClientTime is computed by the collector at build time.
type RatesSnapshot struct {
	GoldPrice   decimal.Decimal `json:"gold_price"`
	GoldBid     decimal.Decimal `json:"gold_bid"`
	GoldAsk     decimal.Decimal `json:"gold_ask"`
	SilverPrice decimal.Decimal `json:"silver_price"`
	SilverBid   decimal.Decimal `json:"silver_bid"`
	SilverAsk   decimal.Decimal `json:"silver_ask"`
	Source      string          `json:"source"`
	ClientTime  string          `json:"client_time"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewSnapshot builds the record for one successful run from the gold and
// silver readings. Both readings must already be validated.
func NewSnapshot(gold, silver QuoteReading, source string, now time.Time) *RatesSnapshot {
	return &RatesSnapshot{
		GoldPrice:   gold.Price,
		GoldBid:     gold.Bid,
		GoldAsk:     gold.Ask,
		SilverPrice: silver.Price,
		SilverBid:   silver.Bid,
		SilverAsk:   silver.Ask,
		Source:      source,
		ClientTime:  now.UTC().Format(time.RFC3339),
	}
}
