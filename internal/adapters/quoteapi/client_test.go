package quoteapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bullionwatch/collector/internal/adapters/quoteapi"
	"github.com/bullionwatch/collector/internal/domain"
)

// TestQuoteSuccess verifies a full quote with bid and ask is parsed as-is.
func TestQuoteSuccess(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "XAU/USD" {
			t.Errorf("expected symbol XAU/USD, got %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("expected apikey test-key, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"symbol": "XAU/USD",
			"price": "2000.50",
			"bid": "2000.00",
			"ask": "2001.00"
		}`))
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	reading, err := client.Quote(context.Background(), "XAU/USD")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if reading.Price.String() != "2000.5" {
		t.Errorf("expected price 2000.5, got %s", reading.Price)
	}
	if reading.Bid.String() != "2000" {
		t.Errorf("expected bid 2000, got %s", reading.Bid)
	}
	if reading.Ask.String() != "2001" {
		t.Errorf("expected ask 2001, got %s", reading.Ask)
	}
	if reading.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

// TestQuoteBidAskSubstitution verifies missing bid/ask fall back to the
// last-trade price.
func TestQuoteBidAskSubstitution(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol": "XAG/USD", "price": "25.00"}`))
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	reading, err := client.Quote(context.Background(), "XAG/USD")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !reading.Bid.Equal(reading.Price) {
		t.Errorf("expected bid to equal price %s, got %s", reading.Price, reading.Bid)
	}
	if !reading.Ask.Equal(reading.Price) {
		t.Errorf("expected ask to equal price %s, got %s", reading.Price, reading.Ask)
	}
}

// TestQuoteUnparseableBidFallsBack verifies garbage bid/ask strings are
// treated the same as absent ones.
func TestQuoteUnparseableBidFallsBack(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": "25.00", "bid": "n/a", "ask": "-1"}`))
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	reading, err := client.Quote(context.Background(), "XAG/USD")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reading.Bid.Equal(reading.Price) || !reading.Ask.Equal(reading.Price) {
		t.Errorf("expected bid/ask fallback to %s, got bid=%s ask=%s",
			reading.Price, reading.Bid, reading.Ask)
	}
}

// TestQuoteHTTPError verifies a non-2xx status fails the fetch.
func TestQuoteHTTPError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	_, err := client.Quote(context.Background(), "XAU/USD")
	if !errors.Is(err, quoteapi.ErrBadStatus) {
		t.Fatalf("expected ErrBadStatus, got %v", err)
	}
}

// TestQuoteAPIErrorBody verifies an error-signaling body fails the fetch
// despite a 200 status.
func TestQuoteAPIErrorBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "code": 429, "message": "run out of credits"}`))
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	_, err := client.Quote(context.Background(), "XAU/USD")
	if !errors.Is(err, quoteapi.ErrAPIError) {
		t.Fatalf("expected ErrAPIError, got %v", err)
	}
}

// TestQuoteZeroPrice verifies a zero last-trade price violates the
// invariant.
func TestQuoteZeroPrice(t *testing.T) {
	for _, body := range []string{
		`{"price": "0"}`,
		`{"price": ""}`,
		`{}`,
		`{"price": "-3.5"}`,
	} {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		client := quoteapi.NewClient(mockServer.URL, "test-key", nil)
		_, err := client.Quote(context.Background(), "XAG/USD")
		mockServer.Close()

		if !errors.Is(err, domain.ErrZeroPrice) {
			t.Errorf("body %s: expected ErrZeroPrice, got %v", body, err)
		}
	}
}

// TestQuoteMalformedJSON verifies a garbage body fails the fetch.
func TestQuoteMalformedJSON(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{invalid json}`))
	}))
	defer mockServer.Close()

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	_, err := client.Quote(context.Background(), "XAU/USD")
	if err == nil {
		t.Fatal("expected error due to malformed JSON, got nil")
	}
}

// TestQuoteContextCancelled verifies a hung upstream is bounded by the
// caller's context.
func TestQuoteContextCancelled(t *testing.T) {
	block := make(chan struct{})
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer mockServer.Close()
	defer close(block)

	client := quoteapi.NewClient(mockServer.URL, "test-key", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Quote(ctx, "XAU/USD")
	if err == nil {
		t.Fatal("expected error due to context timeout, got nil")
	}
}
