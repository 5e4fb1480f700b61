// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the sciextract pipeline:
// the structured record produced from a scientific answer, the vocabulary
// that drives the extraction heuristics, and stage configuration.
package types

import "time"

// ContentType classifies a response for extraction purposes.
type ContentType string

const (
	// ContentThoughtExperiment is the type hint that forces thought-experiment
	// extraction regardless of keyword content.
	ContentThoughtExperiment ContentType = "thought_experiment"

	// ContentGeneral marks a response that was not classified as a thought experiment.
	ContentGeneral ContentType = "general"
)

// ChartData is a simple categorical dataset for visualization. Labels[i]
// corresponds to Values[i]; both slices always have the same length.
type ChartData struct {
	Labels []string  `json:"labels" yaml:"labels"`
	Values []float64 `json:"values" yaml:"values"`
	Title  string    `json:"title" yaml:"title"`
}

// Len returns the number of data points.
func (c *ChartData) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Labels)
}

// ThoughtExperiment describes a hypothetical scenario found in a response.
type ThoughtExperiment struct {
	// Scenario is the setup of the experiment. Falls back to the summary.
	Scenario string `json:"scenario" yaml:"scenario"`

	// Principles lists the physical principles or key concepts involved.
	Principles []string `json:"principles" yaml:"principles"`

	// Implications lists consequences, results, or outcomes.
	Implications []string `json:"implications" yaml:"implications"`
}

// Response is the structured record extracted from free-form scientific text.
type Response struct {
	// Summary is the lead explanatory paragraph. Non-empty whenever the
	// input has non-blank content.
	Summary string `json:"summary" yaml:"summary"`

	// Equations holds each math expression without its $$ delimiters, in
	// order of appearance. Never nil.
	Equations []string `json:"equations" yaml:"equations"`

	// Insight is the closing analytical paragraph.
	Insight string `json:"insight" yaml:"insight"`

	// Chart is present when a table, chart block, or known default was found.
	Chart *ChartData `json:"chart,omitempty" yaml:"chart,omitempty"`

	// ThoughtExperiment is present only when the response was classified as one.
	ThoughtExperiment *ThoughtExperiment `json:"thought_experiment,omitempty" yaml:"thought_experiment,omitempty"`
}

// ResponseRecord is an extracted Response with provenance, as written by the
// batch stage and held by the response store.
type ResponseRecord struct {
	// ID is a stable identifier derived from the source name and text.
	ID string `json:"id" yaml:"id"`

	// Source is the file name or URL the text came from.
	Source string `json:"source" yaml:"source"`

	// ContentType records the classification used during extraction.
	ContentType ContentType `json:"content_type" yaml:"content_type"`

	// Hash is the hex SHA-256 of the type hint and input text.
	Hash string `json:"hash" yaml:"hash"`

	// ExtractedAt is when the extraction ran.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`

	Response `yaml:",inline"`
}
