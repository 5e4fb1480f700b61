// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/sciextract/pkg/types"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// QueryOptions holds parameters for response store queries.
type QueryOptions struct {
	// Query is a case-insensitive substring matched against summaries,
	// insights, and equations.
	Query string

	// ContentType filters by classification.
	ContentType types.ContentType

	// HasChart keeps only records with chart data.
	HasChart bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.ContentType == "" && !q.HasChart
}

const recordColumns = `r.id, r.source, r.content_type, r.hash, r.summary, r.insight,
	r.chart, r.thought_experiment, r.extracted_at`

// Retrieve searches the store. Results are ordered by source, then ID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.ResponseRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(`SELECT ` + recordColumns + ` FROM responses r WHERE 1=1`)

	if opts.Query != "" {
		pattern := likePattern(opts.Query)
		qb.WriteString(` AND (r.summary LIKE ? ESCAPE '\' OR r.insight LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM equations e WHERE e.response_id = r.id AND e.expression LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	if opts.ContentType != "" {
		qb.WriteString(` AND r.content_type = ?`)
		args = append(args, string(opts.ContentType))
	}

	if opts.HasChart {
		qb.WriteString(` AND r.chart IS NOT NULL`)
	}

	qb.WriteString(` ORDER BY r.source, r.id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying response store: %w", err)
	}

	var results []types.ResponseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		eqs, err := s.equations(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Equations = eqs
	}

	return results, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*types.ResponseRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM responses r WHERE r.id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	rec.Equations, err = s.equations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// equations loads a record's equations in their original order.
func (s *Store) equations(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expression FROM equations WHERE response_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading equations for %s: %w", id, err)
	}
	defer rows.Close()

	eqs := []string{}
	for rows.Next() {
		var eq string
		if err := rows.Scan(&eq); err != nil {
			return nil, fmt.Errorf("scanning equation: %w", err)
		}
		eqs = append(eqs, eq)
	}
	return eqs, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.ResponseRecord, error) {
	var (
		rec         types.ResponseRecord
		contentType string
		summary     sql.NullString
		insight     sql.NullString
		chartJSON   sql.NullString
		teJSON      sql.NullString
		extractedAt sql.NullString
	)

	if err := sc.Scan(
		&rec.ID, &rec.Source, &contentType, &rec.Hash, &summary, &insight,
		&chartJSON, &teJSON, &extractedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scanning row: %w", err)
	}

	rec.ContentType = types.ContentType(contentType)
	rec.Summary = summary.String
	rec.Insight = insight.String

	if chartJSON.Valid {
		var chart types.ChartData
		if err := json.Unmarshal([]byte(chartJSON.String), &chart); err != nil {
			return rec, fmt.Errorf("decoding chart for %s: %w", rec.ID, err)
		}
		rec.Chart = &chart
	}
	if teJSON.Valid {
		var te types.ThoughtExperiment
		if err := json.Unmarshal([]byte(teJSON.String), &te); err != nil {
			return rec, fmt.Errorf("decoding thought experiment for %s: %w", rec.ID, err)
		}
		rec.ThoughtExperiment = &te
	}
	if extractedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, extractedAt.String); err == nil {
			rec.ExtractedAt = t
		}
	}

	return rec, nil
}

// likePattern wraps q for a substring LIKE match, escaping wildcards.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
