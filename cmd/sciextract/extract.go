// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sciextract/internal/fetch"
	"github.com/pdiddy/sciextract/internal/store"
	"github.com/pdiddy/sciextract/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract a structured record from one scientific answer",
	Long: `Extract reads one answer from a file, from standard input ("-" or no
argument), or from a URL (--url) and prints the structured record as YAML
or JSON. Use --type thought_experiment to force thought-experiment
extraction. With --store the record is also saved to the response store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	url, _ := cmd.Flags().GetString("url")
	if url != "" && len(args) > 0 {
		return fmt.Errorf("give either a file or --url, not both")
	}

	cfg := pipelineConfig()
	ctx := context.Background()

	text, source, err := readInput(ctx, cfg.Fetch, args, url, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ex, err := newExtractor(cfg.Extraction)
	if err != nil {
		return err
	}
	rec := ex.Record(source, text, cfg.Extraction.TypeHint)

	if save, _ := cmd.Flags().GetBool("store"); save {
		s, err := store.NewStore(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Put(ctx, rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stored %s\n", rec.ID)
	}

	return writeRecord(cmd.OutOrStdout(), rec, format)
}

// readInput returns the answer text and a source name for it.
func readInput(ctx context.Context, cfg types.FetchConfig, args []string, url string, stdin io.Reader) (string, string, error) {
	if url != "" {
		f, err := fetch.New(cfg, logger)
		if err != nil {
			return "", "", err
		}
		text, err := f.Fetch(ctx, url)
		if err != nil {
			return "", "", err
		}
		return text, url, nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), filepath.Base(args[0]), nil
}

func writeRecord(w io.Writer, rec *types.ResponseRecord, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	extractCmd.Flags().String("type", "", "type hint, e.g. thought_experiment")
	extractCmd.Flags().String("format", "yaml", "output format: yaml or json")
	extractCmd.Flags().String("url", "", "fetch the answer text from this URL")
	extractCmd.Flags().Bool("store", false, "also save the record to the response store")

	bindFlag("extraction.type_hint", extractCmd.Flags().Lookup("type"))

	rootCmd.AddCommand(extractCmd)
}
