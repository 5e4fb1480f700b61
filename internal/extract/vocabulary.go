// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/sciextract/pkg/types"
)

// DefaultVocabulary returns the built-in keyword lists.
func DefaultVocabulary() types.Vocabulary {
	return types.Vocabulary{
		ThoughtExperimentKeywords: []string{
			"thought experiment",
			"paradox",
			"schrödinger",
			"schrodinger",
			"einstein-podolsky-rosen",
			"wigner's friend",
			"maxwell's demon",
			"many-worlds",
			"copenhagen interpretation",
		},
		LabelColumns: []string{"state", "outcome", "scenario"},
		ValueColumns: []string{"probability", "frequency", "value"},
	}
}

// LoadVocabulary reads a YAML vocabulary file. Lists missing from the file
// keep their default values.
func LoadVocabulary(path string) (types.Vocabulary, error) {
	vocab := DefaultVocabulary()
	data, err := os.ReadFile(path)
	if err != nil {
		return vocab, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var override types.Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return vocab, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	if len(override.ThoughtExperimentKeywords) > 0 {
		vocab.ThoughtExperimentKeywords = override.ThoughtExperimentKeywords
	}
	if len(override.LabelColumns) > 0 {
		vocab.LabelColumns = override.LabelColumns
	}
	if len(override.ValueColumns) > 0 {
		vocab.ValueColumns = override.ValueColumns
	}
	return vocab, nil
}

// fold prepares s for case-insensitive comparison: NFC normalization so
// precomposed and decomposed accents compare equal, then Unicode case folding.
// A Caser is stateful, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// foldAll folds every keyword and drops empty entries.
func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, fold(k))
		}
	}
	return out
}

// containsAny reports whether folded text contains any folded keyword.
func containsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
