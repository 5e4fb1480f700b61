// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/sciextract/pkg/types"
)

const (
	extractedDir   = "extracted"
	hintSuffix     = ".hint"
	outputSuffix   = "-response.yaml"
	defaultWorkers = 4
)

// responseExts lists the file extensions read from the responses directory.
var responseExts = map[string]bool{
	".md":  true,
	".txt": true,
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of responses processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any responses failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// outcome is the result of processing one response file.
type outcome struct {
	id        string
	skipped   bool
	err       error
	equations int
}

// ExtractAll processes every response file in cfg.ResponsesDir and writes
// one YAML record per file to cfg.StoreDir/extracted/. Files whose output is
// newer than the input are skipped. Up to cfg.Workers files are extracted
// concurrently; progress is written to w in directory order. Identical
// inputs within one run are extracted once.
func ExtractAll(ctx context.Context, ex *Extractor, cfg types.BatchConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.StoreDir, extractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.ResponsesDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading responses directory %s: %w", cfg.ResponsesDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !responseExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, entry.Name())
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	memo := gocache.New(gocache.NoExpiration, 0)
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = processFile(ex, memo, cfg, name, outDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", o.id, o.err)
			summary.Failed++
		case o.skipped:
			fmt.Fprintf(w, "skipped %s\n", o.id)
			summary.Skipped++
		default:
			fmt.Fprintf(w, "extracted %s (%d equations)\n", o.id, o.equations)
			summary.Extracted++
		}
	}

	ex.log.Info("batch extraction finished",
		zap.Int("extracted", summary.Extracted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// processFile extracts a single response file unless its output is current.
func processFile(ex *Extractor, memo *gocache.Cache, cfg types.BatchConfig, name, outDir string) outcome {
	id := strings.TrimSuffix(name, filepath.Ext(name))
	inPath := filepath.Join(cfg.ResponsesDir, name)
	hintPath := filepath.Join(cfg.ResponsesDir, id+hintSuffix)
	outPath := filepath.Join(outDir, id+outputSuffix)

	changed, err := hasChanged(inPath, hintPath, outPath)
	if err != nil {
		return outcome{id: id, err: err}
	}
	if !changed {
		return outcome{id: id, skipped: true}
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return outcome{id: id, err: fmt.Errorf("reading response %s: %w", inPath, err)}
	}

	text := string(data)
	hint := readHint(hintPath, cfg.TypeHint)
	hash := contentHash(text, hint)

	var resp types.Response
	if cached, ok := memo.Get(hash); ok {
		resp = cached.(types.Response)
	} else {
		resp = *ex.Extract(text, hint)
		memo.Set(hash, resp, gocache.NoExpiration)
	}

	rec := &types.ResponseRecord{
		ID:          stableID(name, text),
		Source:      name,
		ContentType: ex.ContentTypeOf(text, hint),
		Hash:        hash,
		ExtractedAt: time.Now().UTC(),
		Response:    resp,
	}

	if err := WriteRecord(outPath, rec); err != nil {
		return outcome{id: id, err: fmt.Errorf("write error: %w", err)}
	}
	return outcome{id: id, equations: len(rec.Equations)}
}

// Record extracts text and wraps the result with provenance for source.
func (e *Extractor) Record(source, text string, typeHint types.ContentType) *types.ResponseRecord {
	return &types.ResponseRecord{
		ID:          stableID(source, text),
		Source:      source,
		ContentType: e.ContentTypeOf(text, typeHint),
		Hash:        contentHash(text, typeHint),
		ExtractedAt: time.Now().UTC(),
		Response:    *e.Extract(text, typeHint),
	}
}

// readHint returns the trimmed contents of a sidecar hint file, or fallback
// when the file is absent or empty.
func readHint(path string, fallback types.ContentType) types.ContentType {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	if hint := strings.TrimSpace(string(data)); hint != "" {
		return types.ContentType(hint)
	}
	return fallback
}

// stableID is the first 12 hex characters of SHA-256(source + text).
func stableID(source, text string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// contentHash identifies an extraction input: the hint and the text.
func contentHash(text string, typeHint types.ContentType) string {
	h := sha256.New()
	h.Write([]byte(typeHint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// hasChanged reports whether the response file or its hint sidecar is newer
// than its output. Returns true if the output does not exist. A missing
// sidecar is ignored.
func hasChanged(inPath, hintPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat response %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}
	if inInfo.ModTime().After(outInfo.ModTime()) {
		return true, nil
	}

	hintInfo, err := os.Stat(hintPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat hint %s: %w", hintPath, err)
	}
	return hintInfo.ModTime().After(outInfo.ModTime()), nil
}

// WriteRecord marshals a ResponseRecord to a YAML file.
func WriteRecord(path string, rec *types.ResponseRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
