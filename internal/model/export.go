package model

import "time"

// LeaderboardExport is the top-level JSON structure for score export.
type LeaderboardExport struct {
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Store       string        `json:"store" yaml:"store"`
	Entries     []ExportEntry `json:"entries" yaml:"entries"`
}

// ExportEntry holds one ranked user's counters for export.
type ExportEntry struct {
	Rank        int       `json:"rank" yaml:"rank"`
	UserID      string    `json:"user_id" yaml:"user_id"`
	Correct     int64     `json:"correct" yaml:"correct"`
	Total       int64     `json:"total" yaml:"total"`
	Accuracy    float64   `json:"accuracy" yaml:"accuracy"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}
