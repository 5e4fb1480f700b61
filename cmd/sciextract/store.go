// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sciextract/internal/store"
	"github.com/pdiddy/sciextract/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the response store (ingest, retrieve, get, export)",
	Long: `Store manages a local SQLite database of extracted records. Use
subcommands to index records written by batch, search them, fetch one by
ID, or export them.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index extracted records into the response store",
	Long: `Ingest reads record YAML files from store/extracted/, loads them into
the SQLite database, and writes store/index/export.yaml. Unchanged files
are skipped on subsequent runs.`,
	Args: cobra.NoArgs,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(pipelineConfig().Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search stored records",
	Long: `Retrieve searches summaries, insights, and equations for a
case-insensitive substring, optionally filtered by content type or by
the presence of chart data.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, or --has-chart")
	}

	s, err := store.NewStore(pipelineConfig().Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatRetrieveOutput(w io.Writer, results []types.ResponseRecord, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []types.ResponseRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-18s  %-20s  %-4s  %s\n", "ID", "Type", "Source", "Eqs", "Summary")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range results {
		fmt.Fprintf(w, "%-12s  %-18s  %-20s  %-4d  %s\n",
			r.ID, r.ContentType, truncate(r.Source, 20), len(r.Equations), truncate(firstLine(r.Summary), 50))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// --- get subcommand ---

var storeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one stored record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	s, err := store.NewStore(pipelineConfig().Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	return writeRecord(cmd.OutOrStdout(), rec, format)
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to YAML or JSON",
	Long: `Export writes all stored records (or a filtered subset) to
store/index/export.yaml or export.json. Supports the same filter flags
as retrieve.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(pipelineConfig().Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(context.Background(), opts)
	case "json":
		path, err = s.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	contentType, _ := cmd.Flags().GetString("type")
	hasChart, _ := cmd.Flags().GetBool("has-chart")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:       queryText,
		ContentType: types.ContentType(contentType),
		HasChart:    hasChart,
		MaxResults:  limit,
	}
}

func init() {
	storeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	bindFlag("store.max_results", storeCmd.PersistentFlags().Lookup("max-results"))

	for _, c := range []*cobra.Command{storeRetrieveCmd, storeExportCmd} {
		c.Flags().String("query", "", "substring to search for")
		c.Flags().String("type", "", "filter by content type: thought_experiment or general")
		c.Flags().Bool("has-chart", false, "only records with chart data")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	storeGetCmd.Flags().String("format", "yaml", "output format: yaml or json")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
