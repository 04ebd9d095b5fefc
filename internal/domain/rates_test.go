package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestQuoteReadingValidate(t *testing.T) {
	cases := []struct {
		name  string
		price string
		valid bool
	}{
		{"positive", "2000.50", true},
		{"zero", "0", false},
		{"negative", "-1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := QuoteReading{
				Symbol: "XAU/USD",
				Price:  decimal.RequireFromString(tc.price),
			}
			err := q.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrZeroPrice) {
				t.Errorf("expected ErrZeroPrice, got %v", err)
			}
		})
	}
}

func TestQuoteReadingValidateMissingPrice(t *testing.T) {
	q := QuoteReading{Symbol: "XAG/USD"}
	if !errors.Is(q.Validate(), ErrZeroPrice) {
		t.Error("zero-valued reading must fail validation")
	}
}

func TestNewSnapshot(t *testing.T) {
	gold := QuoteReading{
		Symbol: "XAU/USD",
		Price:  decimal.RequireFromString("2000.50"),
		Bid:    decimal.RequireFromString("2000.00"),
		Ask:    decimal.RequireFromString("2001.00"),
	}
	silver := QuoteReading{
		Symbol: "XAG/USD",
		Price:  decimal.RequireFromString("25.00"),
		Bid:    decimal.RequireFromString("25.00"),
		Ask:    decimal.RequireFromString("25.00"),
	}

	now := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)
	snap := NewSnapshot(gold, silver, "twelvedata", now)

	if !snap.GoldPrice.Equal(gold.Price) || !snap.GoldBid.Equal(gold.Bid) || !snap.GoldAsk.Equal(gold.Ask) {
		t.Error("gold fields not carried over")
	}
	if !snap.SilverPrice.Equal(silver.Price) || !snap.SilverBid.Equal(silver.Bid) || !snap.SilverAsk.Equal(silver.Ask) {
		t.Error("silver fields not carried over")
	}
	if snap.Source != "twelvedata" {
		t.Errorf("unexpected source %q", snap.Source)
	}
	if snap.ClientTime != "2026-08-31T12:30:00Z" {
		t.Errorf("unexpected client time %q", snap.ClientTime)
	}
	if !snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt must be left for the store to assign")
	}
}
