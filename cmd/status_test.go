package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ratesmap/ratesmap/internal/ingest"
	"github.com/ratesmap/ratesmap/internal/property"
)

func testPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

func TestFormatSyncEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatSyncEntries(&buf, testPrinter(), nil)

	output := buf.String()
	// Header is written even with no entries.
	assert.Contains(t, output, "SOURCE")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "STARTED")
}

func TestFormatSyncEntries_SingleEntry(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	completed := started.Add(5 * time.Minute)

	entries := []ingest.SyncEntry{
		{
			ID:          uuid.New(),
			Source:      "auckland",
			Status:      "complete",
			StartedAt:   started,
			CompletedAt: &completed,
			RowsSynced:  550000,
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, testPrinter(), entries)

	output := buf.String()
	assert.Contains(t, output, "auckland")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2026-03-01 10:30")
	assert.Contains(t, output, "5m0s")
	assert.Contains(t, output, "550,000")
}

func TestFormatSyncEntries_Running(t *testing.T) {
	entries := []ingest.SyncEntry{
		{
			ID:        uuid.New(),
			Source:    "wellington",
			Status:    "running",
			StartedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, testPrinter(), entries)

	output := buf.String()
	assert.Contains(t, output, "wellington")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "-")
}

func TestFormatSyncEntries_TruncatesError(t *testing.T) {
	longErr := ""
	for range 10 {
		longErr += "connection refused; "
	}

	entries := []ingest.SyncEntry{
		{
			ID:        uuid.New(),
			Source:    "queenstown",
			Status:    "failed",
			StartedAt: time.Now(),
			Error:     longErr,
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, testPrinter(), entries)

	assert.Contains(t, buf.String(), "...")
}

func TestFormatCategories(t *testing.T) {
	cats := []property.CategoryCount{
		{PropertyType: "Residential", Count: 450000},
		{PropertyType: "Commercial", Count: 12000},
	}

	var buf bytes.Buffer
	formatCategories(&buf, testPrinter(), cats)

	output := buf.String()
	assert.Contains(t, output, "Residential")
	assert.Contains(t, output, "450,000")
	assert.Contains(t, output, "Commercial")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijk", 10))
}
