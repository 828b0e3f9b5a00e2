// Package content is the read-mostly store backing the portfolio UI
// sections and the vector sync job. Rows are read generically per table so
// the sync job can flatten any content table without per-table code.
package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tables is the closed set of content tables, in sync order.
var Tables = []string{
	"personal_data",
	"skills",
	"projects",
	"experience",
	"education",
}

// skippedColumns are excluded from flattened text: identifiers, timestamps
// and image URLs carry no semantic value for similarity search.
var skippedColumns = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"metadata":          true,
	"image_url":         true,
	"profile_image_url": true,
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS personal_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		value TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		proficiency TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		tech_stack TEXT,
		live_url TEXT,
		repo_url TEXT,
		image_url TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS experience (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		role TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		summary TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS education (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		institution TEXT NOT NULL,
		degree TEXT,
		start_year TEXT,
		end_year TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
}

// Store reads content rows for the UI and the sync job.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the content tables when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("content: init schema: %w", err)
		}
	}
	return nil
}

// KnownTable reports whether name is one of the content tables. Table
// names are interpolated into SQL, so everything else is rejected.
func KnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Rows returns every row of the given table as column→value maps, in
// primary key order.
func (s *Store) Rows(ctx context.Context, table string) ([]map[string]any, error) {
	if !KnownTable(table) {
		return nil, fmt.Errorf("content: unknown table %q", table)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("content: query %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("content: columns of %s: %w", table, err)
	}

	out := make([]map[string]any, 0, 16)
	for rows.Next() {
		values := make([]any, len(cols))
		scan := make([]any, len(cols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("content: scan %s: %w", table, err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("content: iterate %s: %w", table, err)
	}
	return out, nil
}

// RowText flattens one row into the text the vector index stores:
// "Table: skills. Content: category: frontend. name: React". Identifier,
// timestamp and image columns are skipped; keys are sorted so the same row
// always renders the same text (and therefore the same point ID).
func RowText(table string, row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		if skippedColumns[k] || row[k] == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, k+": "+valueText(row[k]))
	}
	return "Table: " + table + ". Content: " + strings.Join(fields, ". ")
}

// normalizeValue converts driver bytes to string so rows marshal to JSON
// cleanly.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// valueText renders a column value for flattened text.
func valueText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
