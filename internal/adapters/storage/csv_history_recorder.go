package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bullionwatch/collector/internal/domain"
)

// CSVHistoryRecorder implements HistoryRecorder using daily CSV files.
// File format: <dir>/rates_YYYYMMDD.csv, one row per successful run.
// Columns: recorded_at,gold_price,gold_bid,gold_ask,silver_price,silver_bid,silver_ask,source
type CSVHistoryRecorder struct {
	baseDir string
	mu      sync.Mutex
	day     string
	file    *os.File
	buffer  *bufio.Writer
	writer  *csv.Writer
}

// NewCSVHistoryRecorder creates a recorder writing under baseDir.
func NewCSVHistoryRecorder(baseDir string) *CSVHistoryRecorder {
	return &CSVHistoryRecorder{baseDir: baseDir}
}

// Record appends one snapshot row, rolling over to a new file at
// midnight UTC.
func (r *CSVHistoryRecorder) Record(ctx context.Context, snap *domain.RatesSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	writer, err := r.getWriter(now)
	if err != nil {
		return fmt.Errorf("failed to get writer: %w", err)
	}

	record := []string{
		now.Format(time.RFC3339),
		snap.GoldPrice.String(),
		snap.GoldBid.String(),
		snap.GoldAsk.String(),
		snap.SilverPrice.String(),
		snap.SilverBid.String(),
		snap.SilverAsk.String(),
		snap.Source,
	}

	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Flush ensures all buffered rows are written to storage.
func (r *CSVHistoryRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *CSVHistoryRecorder) flushLocked() error {
	if r.writer == nil {
		return nil
	}
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := r.buffer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

// Close finalizes the recording session and releases resources.
func (r *CSVHistoryRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.flushLocked(); err != nil {
		return err
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return fmt.Errorf("failed to close history file: %w", err)
		}
	}
	r.day = ""
	r.file = nil
	r.buffer = nil
	r.writer = nil
	return nil
}

// getWriter returns the CSV writer for the given day, closing the
// previous day's file on rollover.
func (r *CSVHistoryRecorder) getWriter(now time.Time) (*csv.Writer, error) {
	day := now.Format("20060102")
	if r.writer != nil && r.day == day {
		return r.writer, nil
	}

	if r.writer != nil {
		if err := r.flushLocked(); err != nil {
			return nil, err
		}
		if err := r.file.Close(); err != nil {
			return nil, fmt.Errorf("failed to close file for %s: %w", r.day, err)
		}
		r.file = nil
		r.buffer = nil
		r.writer = nil
	}

	if err := os.MkdirAll(r.baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", r.baseDir, err)
	}

	filePath := filepath.Join(r.baseDir, fmt.Sprintf("rates_%s.csv", day))

	fileExists := false
	if _, err := os.Stat(filePath); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	buffer := bufio.NewWriter(file)
	writer := csv.NewWriter(buffer)

	if !fileExists {
		header := []string{
			"recorded_at",
			"gold_price", "gold_bid", "gold_ask",
			"silver_price", "silver_bid", "silver_ask",
			"source",
		}
		if err := writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	r.day = day
	r.file = file
	r.buffer = buffer
	r.writer = writer
	return writer, nil
}
