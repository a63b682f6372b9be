// Package main provides a CLI tool to ingest knowledge passages from a CSV file
// into the PitchHub API. Each row becomes one passage; embeddings are generated
// asynchronously by the server's job queue after ingestion.
//
// Expected CSV columns: source_id, passage, metadata (optional JSON object).
//
// Usage:
//
//	go run scripts/ingest_passages.go -file /path/to/passages.csv -api-url http://localhost:8080 -api-key YOUR_API_KEY
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config holds the CLI configuration
type Config struct {
	FilePath   string
	APIBaseURL string
	APIKey     string
	DelayMS    int
	DryRun     bool
	SourceID   string
}

// PassageRequest matches the CreateKnowledgePassageRequest model
type PassageRequest struct {
	SourceID string          `json:"source_id"`
	Passage  string          `json:"passage"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// APIResponse represents a generic API response
type APIResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Stats tracks ingestion statistics
type Stats struct {
	TotalRows       int
	SkippedEmpty    int
	SuccessfulPosts int
	FailedPosts     int
}

// CSV column indices (0-based)
const (
	colSourceID = 0
	colPassage  = 1
	colMetadata = 2
)

func main() {
	cfg := parseFlags()

	if cfg.FilePath == "" {
		fmt.Println("Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if cfg.APIKey == "" {
		fmt.Println("Error: -api-key is required")
		flag.Usage()
		os.Exit(1)
	}

	fmt.Printf("PitchHub passage ingestion tool\n")
	fmt.Printf("   API URL: %s\n", cfg.APIBaseURL)
	fmt.Printf("   CSV File: %s\n", cfg.FilePath)
	fmt.Printf("   Delay: %dms between requests\n", cfg.DelayMS)
	if cfg.DryRun {
		fmt.Printf("   DRY RUN MODE - No actual API calls will be made\n")
	}
	fmt.Println()

	stats := processCSV(cfg)

	fmt.Println()
	fmt.Println("Ingestion summary")
	fmt.Printf("   Total rows processed:  %d\n", stats.TotalRows)
	fmt.Printf("   Skipped (empty):       %d\n", stats.SkippedEmpty)
	fmt.Printf("   Successfully created:  %d\n", stats.SuccessfulPosts)
	fmt.Printf("   Failed:                %d\n", stats.FailedPosts)
	fmt.Println()

	if stats.FailedPosts > 0 {
		os.Exit(1)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.FilePath, "file", "", "Path to CSV file (required)")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "http://localhost:8080", "PitchHub API base URL")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for authentication (required)")
	flag.IntVar(&cfg.DelayMS, "delay", 100, "Delay in milliseconds between API calls")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Parse CSV but don't make API calls")
	flag.StringVar(&cfg.SourceID, "source-id", "", "Override source_id for all passages")

	flag.Parse()
	return cfg
}

func processCSV(cfg Config) Stats {
	stats := Stats{}

	file, err := os.Open(cfg.FilePath)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable field counts
	reader.LazyQuotes = true    // Handle quotes more leniently

	client := &http.Client{Timeout: 10 * time.Second}

	// Skip header row
	_, err = reader.Read()
	if err != nil {
		fmt.Printf("Error reading header: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Ingesting knowledge passages...")

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("   Row %d: Error reading: %v\n", rowNum, err)
			rowNum++
			continue
		}

		stats.TotalRows++

		passage, ok := extractPassageFromRow(row, cfg)
		if !ok {
			stats.SkippedEmpty++
			rowNum++
			continue
		}

		if cfg.DryRun {
			fmt.Printf("   [DRY] Row %d: Would create passage (%d chars)\n", rowNum, len(passage.Passage))
			stats.SuccessfulPosts++
			rowNum++
			continue
		}

		if err := postPassage(client, cfg, passage); err != nil {
			fmt.Printf("   FAIL Row %d: %v\n", rowNum, err)
			stats.FailedPosts++
		} else {
			fmt.Printf("   OK   Row %d\n", rowNum)
			stats.SuccessfulPosts++
		}

		time.Sleep(time.Duration(cfg.DelayMS) * time.Millisecond)
		rowNum++
	}

	return stats
}

func extractPassageFromRow(row []string, cfg Config) (PassageRequest, bool) {
	text := strings.TrimSpace(safeGet(row, colPassage))
	if text == "" {
		return PassageRequest{}, false
	}

	sourceID := cfg.SourceID
	if sourceID == "" {
		sourceID = strings.TrimSpace(safeGet(row, colSourceID))
	}
	if sourceID == "" {
		return PassageRequest{}, false
	}

	req := PassageRequest{
		SourceID: sourceID,
		Passage:  text,
	}

	if meta := strings.TrimSpace(safeGet(row, colMetadata)); meta != "" && json.Valid([]byte(meta)) {
		req.Metadata = json.RawMessage(meta)
	}

	return req, true
}

func postPassage(client *http.Client, cfg Config, passage PassageRequest) error {
	body, err := json.Marshal(passage)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequest("POST", cfg.APIBaseURL+"/v1/knowledge-passages", bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func safeGet(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return row[index]
	}
	return ""
}
