// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns free-form scientific answer text into a structured
// Response. Every field is produced by an ordered list of independent
// heuristics (explicit label, then positional fallback, then a domain
// default); a strategy that finds nothing leaves its field empty and never
// affects the others. Extraction has no error path.
package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/sciextract/pkg/types"
)

// Section labels recognized in the heading-or-colon convention.
var (
	summaryLabels     = []string{"Summary"}
	equationLabels    = []string{"Equations"}
	insightLabels     = []string{"Insight", "Analysis", "Implications", "Conclusion"}
	chartDataLabels   = []string{"Chart Data"}
	scenarioLabels    = []string{"Scenario", "Setup"}
	principleLabels   = []string{"Principles", "Key Concepts", "Key-Concepts"}
	consequenceLabels = []string{"Implications", "Consequences", "Results", "Outcomes"}
)

// displayMathRe matches $$-delimited math, across lines.
var displayMathRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)

// Extractor holds the folded vocabulary and a diagnostic logger. It carries
// no mutable state and is safe for concurrent use.
type Extractor struct {
	thoughtKeywords []string
	labelColumns    []string
	valueColumns    []string
	log             *zap.Logger
}

// New creates an Extractor for vocab. A nil logger discards diagnostics.
func New(vocab types.Vocabulary, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		thoughtKeywords: foldAll(vocab.ThoughtExperimentKeywords),
		labelColumns:    foldAll(vocab.LabelColumns),
		valueColumns:    foldAll(vocab.ValueColumns),
		log:             log,
	}
}

var defaultExtractor = New(DefaultVocabulary(), nil)

// Extract runs the default Extractor over text.
func Extract(text string, typeHint types.ContentType) *types.Response {
	return defaultExtractor.Extract(text, typeHint)
}

// IsThoughtExperiment reports whether the default Extractor classifies text
// as a thought experiment.
func IsThoughtExperiment(text string, typeHint types.ContentType) bool {
	return defaultExtractor.IsThoughtExperiment(text, typeHint)
}

// Extract builds a fresh Response from text. typeHint may be empty.
func (e *Extractor) Extract(text string, typeHint types.ContentType) *types.Response {
	thought := e.IsThoughtExperiment(text, typeHint)

	resp := &types.Response{
		Summary:   extractSummary(text),
		Equations: extractEquations(text),
		Insight:   extractInsight(text),
		Chart:     e.extractChart(text, thought),
	}
	if thought {
		resp.ThoughtExperiment = extractThoughtExperiment(text, resp.Summary)
	}

	e.log.Debug("extracted response",
		zap.Bool("thought_experiment", thought),
		zap.Int("equations", len(resp.Equations)),
		zap.Int("chart_points", resp.Chart.Len()),
	)
	return resp
}

// IsThoughtExperiment is true when typeHint is the thought-experiment tag or
// any thought-experiment keyword occurs in text.
func (e *Extractor) IsThoughtExperiment(text string, typeHint types.ContentType) bool {
	if strings.EqualFold(strings.TrimSpace(string(typeHint)), string(types.ContentThoughtExperiment)) {
		return true
	}
	return containsAny(fold(text), e.thoughtKeywords)
}

// ContentTypeOf returns the classification as a ContentType.
func (e *Extractor) ContentTypeOf(text string, typeHint types.ContentType) types.ContentType {
	if e.IsThoughtExperiment(text, typeHint) {
		return types.ContentThoughtExperiment
	}
	return types.ContentGeneral
}

// extractSummary prefers an explicit Summary section, then the first paragraph.
func extractSummary(text string) string {
	if sec, ok := findSection(text, summaryLabels); ok && sec.body != "" {
		return sec.body
	}
	return firstParagraph(text)
}

// extractEquations collects $$-delimited math in order of appearance. Only
// when there is none does it read an Equations section line by line.
func extractEquations(text string) []string {
	equations := []string{}
	for _, m := range displayMathRe.FindAllStringSubmatch(text, -1) {
		if eq := strings.TrimSpace(m[1]); eq != "" {
			equations = append(equations, eq)
		}
	}
	if len(equations) > 0 {
		return equations
	}

	sec, ok := findSection(text, equationLabels)
	if !ok {
		return equations
	}
	for _, line := range splitLines(sec.body) {
		// An unclosed $$ never reaches displayMathRe.
		line = strings.TrimSpace(strings.ReplaceAll(line, "$$", ""))
		if line == "" || isHeading(line) {
			continue
		}
		equations = append(equations, line)
	}
	return equations
}

// extractInsight prefers an Insight-like section, then the last prose
// paragraph.
func extractInsight(text string) string {
	if sec, ok := findSection(text, insightLabels); ok && sec.body != "" {
		return sec.body
	}

	ps := paragraphs(fencedBlockRe.ReplaceAllString(text, "\n\n```\n\n"))
	for i := len(ps) - 1; i >= 0; i-- {
		p := ps[i]
		if strings.HasPrefix(p, "```") || strings.Contains(p, "$$") || isTableParagraph(p) {
			continue
		}
		return p
	}
	return ""
}

// isTableParagraph reports whether every line of p is a pipe-table row.
func isTableParagraph(p string) bool {
	for _, line := range splitLines(p) {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			return false
		}
	}
	return true
}

// extractThoughtExperiment reads the Scenario, Principles, and Implications
// sections. The scenario falls back to summary.
func extractThoughtExperiment(text, summary string) *types.ThoughtExperiment {
	te := &types.ThoughtExperiment{
		Scenario:     summary,
		Principles:   []string{},
		Implications: []string{},
	}
	if sec, ok := findSection(text, scenarioLabels); ok && sec.body != "" {
		te.Scenario = sec.body
	}
	if sec, ok := findSection(text, principleLabels); ok {
		te.Principles = parseList(sec.body)
	}
	if sec, ok := findSection(text, consequenceLabels); ok {
		te.Implications = parseList(sec.body)
	}
	return te
}
