package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractChart_Table(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		thought    bool
		wantLabels []string
		wantValues []float64
		wantTitle  string
	}{
		{
			name: "percent and emphasis",
			text: strings.Join([]string{
				"| Outcome | Value |",
				"| --- | --- |",
				"| up | **50%** |",
				"| down | `25` |",
				"| sideways | 1e-2 |",
			}, "\n"),
			wantLabels: []string{"up", "down", "sideways"},
			wantValues: []float64{50, 25, 0.01},
			wantTitle:  "Measurement Probabilities",
		},
		{
			name: "thought experiment title",
			text: strings.Join([]string{
				"| Scenario | Probability |",
				"|---|---|",
				"| A | 0.25 |",
				"| B | 0.75 |",
			}, "\n"),
			thought:    true,
			wantLabels: []string{"A", "B"},
			wantValues: []float64{0.25, 0.75},
			wantTitle:  "Theoretical Outcomes",
		},
		{
			name: "extra columns and short rows",
			text: strings.Join([]string{
				"| # | State | Notes | Frequency |",
				"|---|---|---|---|",
				"| 1 | up | first | 3 |",
				"| 2 | down |",
			}, "\n"),
			wantLabels: []string{"up", "down"},
			wantValues: []float64{3, 0},
			wantTitle:  "Measurement Probabilities",
		},
		{
			name: "first usable table wins",
			text: strings.Join([]string{
				"| Name | Mass |",
				"|---|---|",
				"| e | 0.511 |",
				"",
				"| State | Probability |",
				"|---|---|",
				"| 0 | 1 |",
			}, "\n"),
			wantLabels: []string{"0"},
			wantValues: []float64{1},
			wantTitle:  "Measurement Probabilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultExtractor.extractChart(tt.text, tt.thought)
			require.NotNil(t, c)
			assert.Equal(t, tt.wantLabels, c.Labels)
			assert.Equal(t, tt.wantValues, c.Values)
			assert.Equal(t, tt.wantTitle, c.Title)
		})
	}
}

func TestExtractChart_LabelsAndValuesMatchRows(t *testing.T) {
	text := strings.Join([]string{
		"| State | Probability |",
		"|---|---|",
		"| a | 0.1 |",
		"| b | ? |",
		"| c | 0.3 |",
		"| d |  |",
	}, "\n")

	c := defaultExtractor.extractChart(text, false)

	require.NotNil(t, c)
	assert.Len(t, c.Labels, 4)
	assert.Len(t, c.Values, 4)
	assert.Equal(t, 4, c.Len())
}

func TestExtractChart_NoChart(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no table", "Just prose."},
		{"missing separator", "| State | Probability |\n| a | 0.5 |\n| b | 0.5 |"},
		{"header only", "| State | Probability |\n|---|---|"},
		{"unrelated columns", "| Name | Mass |\n|---|---|\n| e | 0.511 |"},
		{"no numeric values", "| State | Probability |\n|---|---|\n| a | high |\n| b | low |"},
		{"cat without schrodinger", "The cat sat on the mat."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, defaultExtractor.extractChart(tt.text, false))
		})
	}
}

func TestExtractChart_DataBlock(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNil   bool
		wantTitle string
	}{
		{
			name:      "json block",
			text:      "Summary:\nOrbits.\n\nChart Data:\n```json\n{\"labels\": [\"a\", \"b\"], \"values\": [1, 2]}\n```\n",
			wantTitle: "Measurement Probabilities",
		},
		{
			name:      "heading with title override",
			text:      "## Chart Data\n\n```\n{\"labels\": [\"a\", \"b\"], \"values\": [1, 2], \"title\": \"Orbital Periods\"}\n```",
			wantTitle: "Orbital Periods",
		},
		{
			name:    "malformed json",
			text:    "Chart Data:\n```\n{labels: a}\n```",
			wantNil: true,
		},
		{
			name:    "mismatched lengths",
			text:    "Chart Data:\n```json\n{\"labels\": [\"a\", \"b\"], \"values\": [1]}\n```",
			wantNil: true,
		},
		{
			name:    "block before header is ignored",
			text:    "```json\n{\"labels\": [\"a\"], \"values\": [1]}\n```\n\nChart Data:\nnone",
			wantNil: true,
		},
		{
			name:    "block in a later section is ignored",
			text:    "Chart Data:\nnot available\n\n## Code\n\n```json\n{\"labels\": [\"a\", \"b\"], \"values\": [1, 2]}\n```",
			wantNil: true,
		},
		{
			name:    "prose between header and block",
			text:    "## Chart Data\nSee below.\n```json\n{\"labels\": [\"a\", \"b\"], \"values\": [1, 2]}\n```",
			wantNil: true,
		},
		{
			name:      "indented fence after blank lines",
			text:      "Chart Data:\n\n\n  ```json\n{\"labels\": [\"a\", \"b\"], \"values\": [1, 2]}\n```",
			wantTitle: "Measurement Probabilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultExtractor.extractChart(tt.text, false)
			if tt.wantNil {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, []string{"a", "b"}, c.Labels)
			assert.Equal(t, []float64{1, 2}, c.Values)
			assert.Equal(t, tt.wantTitle, c.Title)
		})
	}
}

func TestExtractChart_TableBeatsDataBlock(t *testing.T) {
	text := strings.Join([]string{
		"Chart Data:",
		"```json",
		`{"labels": ["x"], "values": [9]}`,
		"```",
		"",
		"| State | Probability |",
		"|---|---|",
		"| y | 1 |",
	}, "\n")

	c := defaultExtractor.extractChart(text, false)

	require.NotNil(t, c)
	assert.Equal(t, []string{"y"}, c.Labels)
}

func TestExtractChart_CatDefaultIsLastResort(t *testing.T) {
	text := "Schrodinger's cat.\n\n| State | Probability |\n|---|---|\n| alive | 0.9 |\n| dead | 0.1 |"

	c := defaultExtractor.extractChart(text, true)

	require.NotNil(t, c)
	assert.Equal(t, []string{"alive", "dead"}, c.Labels)
	assert.Equal(t, "Theoretical Outcomes", c.Title)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"0.5", 0.5, true},
		{" 50% ", 50, true},
		{"-1e-3", -0.001, true},
		{".25", 0.25, true},
		{"$0.7$", 0.7, true},
		{"1/2", 1, true},
		{"n/a", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := parseNumber(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
