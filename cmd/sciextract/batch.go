// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sciextract/internal/extract"
	"github.com/pdiddy/sciextract/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every answer in a responses directory",
	Long: `Batch reads every *.md and *.txt file in the responses directory and
writes one record per file to store/extracted/<name>-response.yaml.
Files whose record is newer than the answer are skipped. A sidecar file
<name>.hint supplies a per-file type hint.

With --ingest the extracted records are indexed into the response store.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	ctx := context.Background()
	out := cmd.OutOrStdout()

	ex, err := newExtractor(cfg.Extraction)
	if err != nil {
		return err
	}

	summary, err := extract.ExtractAll(ctx, ex, cfg.Batch, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	if ingest, _ := cmd.Flags().GetBool("ingest"); ingest {
		s, err := store.NewStore(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.Ingest(ctx, out); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d response(s) failed extraction", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("responses-dir", "responses", "directory of answer files (*.md, *.txt)")
	batchCmd.Flags().String("type", "", "default type hint for files without a .hint sidecar")
	batchCmd.Flags().Int("workers", 4, "number of concurrent extractions")
	batchCmd.Flags().Bool("ingest", false, "index the extracted records into the response store")

	bindFlag("batch.responses_dir", batchCmd.Flags().Lookup("responses-dir"))
	bindFlag("batch.type_hint", batchCmd.Flags().Lookup("type"))
	bindFlag("batch.workers", batchCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(batchCmd)
}
