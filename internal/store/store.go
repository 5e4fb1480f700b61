// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted ResponseRecords in SQLite and answers
// search and lookup queries over them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sciextract/pkg/types"
)

const (
	extractedDir   = "extracted"
	indexDir       = "index"
	dbFile         = "responses.db"
	responseSuffix = "-response.yaml"

	defaultMaxResults = 20
)

// Store manages the response SQLite database.
type Store struct {
	db         *sql.DB
	storeDir   string
	maxResults int
	log        *zap.Logger
}

// NewStore opens or creates the response database at
// storeDir/index/responses.db and creates the schema if it does not exist.
// A nil logger discards diagnostics.
func NewStore(cfg types.StoreConfig, log *zap.Logger) (*Store, error) {
	dbDir := filepath.Join(cfg.StoreDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		db:         db,
		storeDir:   cfg.StoreDir,
		maxResults: maxResults,
		log:        log,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content_type TEXT NOT NULL,
			hash TEXT NOT NULL,
			summary TEXT,
			insight TEXT,
			chart TEXT,
			thought_experiment TEXT,
			extracted_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS equations (
			response_id TEXT NOT NULL REFERENCES responses(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			expression TEXT NOT NULL,
			PRIMARY KEY (response_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_source ON responses(source)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_content_type ON responses(content_type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file_key TEXT PRIMARY KEY,
			response_id TEXT NOT NULL,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads record YAML files from storeDir/extracted/ and loads them
// into the database. Files whose modification time matches the last indexed
// run are skipped; changed files replace their previous record. On any
// change it rewrites export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.storeDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), responseSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		key := strings.TrimSuffix(entry.Name(), responseSuffix)
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", key, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime, previousID string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time, response_id FROM indexing_status WHERE file_key = ?`, key,
		).Scan(&storedModTime, &previousID)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", key)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", key, err)
			summary.Failed++
			continue
		}

		var rec types.ResponseRecord
		if err := yaml.Unmarshal(data, &rec); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", key, err)
			summary.Failed++
			continue
		}
		if rec.ID == "" {
			fmt.Fprintf(w, "failed  %s: record has no id\n", key)
			summary.Failed++
			continue
		}

		if err := s.ingestFile(ctx, key, &rec, previousID, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", key, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d equations)\n", key, len(rec.Equations))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d equations)\n", key, len(rec.Equations))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	s.log.Info("ingest finished",
		zap.Int("indexed", summary.Indexed),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *Store) ingestFile(ctx context.Context, key string, rec *types.ResponseRecord, previousID, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if previousID != "" && previousID != rec.ID {
		if err := deleteRecord(ctx, tx, previousID); err != nil {
			return fmt.Errorf("deleting previous record: %w", err)
		}
	}

	if err := putRecord(ctx, tx, rec); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file_key, response_id, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(file_key) DO UPDATE SET
			response_id=excluded.response_id, file_mod_time=excluded.file_mod_time`,
		key, rec.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// Put stores a single record, replacing any record with the same ID.
func (s *Store) Put(ctx context.Context, rec *types.ResponseRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record has no id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putRecord(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %s: %w", rec.ID, err)
	}

	s.log.Debug("stored record", zap.String("id", rec.ID), zap.String("source", rec.Source))
	return nil
}

// putRecord replaces the response row and its equations inside tx.
func putRecord(ctx context.Context, tx *sql.Tx, rec *types.ResponseRecord) error {
	chartJSON, err := nullableJSON(rec.Chart)
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	teJSON, err := nullableJSON(rec.ThoughtExperiment)
	if err != nil {
		return fmt.Errorf("encoding thought experiment: %w", err)
	}

	if err := deleteRecord(ctx, tx, rec.ID); err != nil {
		return fmt.Errorf("deleting old record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO responses (id, source, content_type, hash, summary, insight, chart, thought_experiment, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, string(rec.ContentType), rec.Hash,
		rec.Summary, rec.Insight, chartJSON, teJSON,
		rec.ExtractedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO equations (response_id, position, expression) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, eq := range rec.Equations {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, eq); err != nil {
			return fmt.Errorf("inserting equation %d of %s: %w", i, rec.ID, err)
		}
	}
	return nil
}

// deleteRecord removes a response row and its equations.
func deleteRecord(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM equations WHERE response_id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE id = ?`, id)
	return err
}

// nullableJSON encodes v, or returns nil so the column stores NULL when v
// is a nil pointer.
func nullableJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
