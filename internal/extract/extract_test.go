package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sciextract/pkg/types"
)

// --- worked answers ---

func TestExtract_LabeledSections(t *testing.T) {
	text := "Summary:\nGravity bends light.\n\n$$E=mc^2$$\n\nInsight:\nThis confirms relativity."

	resp := Extract(text, "")

	assert.Equal(t, "Gravity bends light.", resp.Summary)
	assert.Equal(t, []string{"E=mc^2"}, resp.Equations)
	assert.Equal(t, "This confirms relativity.", resp.Insight)
	assert.Nil(t, resp.Chart)
	assert.Nil(t, resp.ThoughtExperiment)
}

func TestExtract_SchrodingerCatDefaultChart(t *testing.T) {
	text := "Schrödinger imagined a cat sealed in a box with a radioactive atom.\n\nUntil the box is opened the cat is described by a superposition."

	resp := Extract(text, "")

	require.NotNil(t, resp.Chart)
	assert.Equal(t, []string{"Alive", "Dead"}, resp.Chart.Labels)
	assert.Equal(t, []float64{0.5, 0.5}, resp.Chart.Values)
	assert.Equal(t, "Cat State Probabilities", resp.Chart.Title)
}

func TestExtract_MeasurementTable(t *testing.T) {
	text := strings.Join([]string{
		"Measuring a Bell pair gives correlated bits.",
		"",
		"| State | Probability |",
		"|---|---|",
		"| 00 | 0.5 |",
		"| 11 | 0.5 |",
	}, "\n")

	resp := Extract(text, "")

	require.NotNil(t, resp.Chart)
	assert.Equal(t, []string{"00", "11"}, resp.Chart.Labels)
	assert.Equal(t, []float64{0.5, 0.5}, resp.Chart.Values)
	assert.Equal(t, "Measurement Probabilities", resp.Chart.Title)
}

func TestExtract_ThoughtExperimentPrinciples(t *testing.T) {
	text := strings.Join([]string{
		"Imagine twins separated by a relativistic journey.",
		"",
		"Principles:",
		"- Time dilation",
		"- Relativity of simultaneity",
	}, "\n")

	resp := Extract(text, types.ContentThoughtExperiment)

	require.NotNil(t, resp.ThoughtExperiment)
	assert.Equal(t, []string{"Time dilation", "Relativity of simultaneity"}, resp.ThoughtExperiment.Principles)
	assert.Equal(t, "Imagine twins separated by a relativistic journey.", resp.ThoughtExperiment.Scenario)
	assert.Empty(t, resp.ThoughtExperiment.Implications)
}

// --- summary ---

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "colon label",
			text: "Intro line.\n\nSummary:\nThe key result.\n\nMore text.",
			want: "The key result.",
		},
		{
			name: "h2 heading",
			text: "## Summary\nThe key result.\nSecond line.\n\n## Details\nOther.",
			want: "The key result.\nSecond line.",
		},
		{
			name: "h1 heading stops at next heading",
			text: "# Summary\nThe key result.\n# Next\nOther.",
			want: "The key result.",
		},
		{
			name: "inline after colon",
			text: "Summary: Light has momentum.\n\nDetails follow.",
			want: "Light has momentum.",
		},
		{
			name: "bold label",
			text: "**Summary:**\nBold labeled.\n\nRest.",
			want: "Bold labeled.",
		},
		{
			name: "h3 is not a summary header",
			text: "Opening paragraph.\n\n### Summary\nIgnored.",
			want: "Opening paragraph.",
		},
		{
			name: "first paragraph fallback",
			text: "  First paragraph here.  \n\nSecond paragraph.",
			want: "First paragraph here.",
		},
		{
			name: "blank label falls back to first paragraph",
			text: "Summary:\n\n\n",
			want: "Summary:",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSummary(tt.text))
		})
	}
}

// --- equations ---

func TestExtractEquations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "order preserved and trimmed",
			text: "First $$ a = b $$ then\n$$\nc = d\n$$ and $$e=f$$.",
			want: []string{"a = b", "c = d", "e=f"},
		},
		{
			name: "empty delimiters dropped",
			text: "Nothing $$  $$ here $$x$$",
			want: []string{"x"},
		},
		{
			name: "equations section fallback",
			text: "Intro.\n\nEquations:\nF = ma\n\np = mv\n",
			want: []string{"F = ma"},
		},
		{
			name: "equations heading fallback",
			text: "## Equations\nF = ma\np = mv\n\n## Insight\nDone.",
			want: []string{"F = ma", "p = mv"},
		},
		{
			name: "dollar equations win over section",
			text: "Equations:\nF = ma\n\n$$E = hf$$",
			want: []string{"E = hf"},
		},
		{
			name: "unclosed delimiter in section fallback",
			text: "Summary:\nx\n\nEquations:\n$$E=mc^2\nF=ma",
			want: []string{"E=mc^2", "F=ma"},
		},
		{
			name: "lone delimiter line in section fallback",
			text: "Equations:\n$$\nF = ma",
			want: []string{"F = ma"},
		},
		{
			name: "none",
			text: "Plain prose.",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEquations(tt.text)
			assert.Equal(t, tt.want, got)
			for _, eq := range got {
				assert.NotContains(t, eq, "$$")
			}
		})
	}
}

// --- insight ---

func TestExtractInsight(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "analysis synonym",
			text: "Lead.\n\nAnalysis:\nThe spectrum is discrete.",
			want: "The spectrum is discrete.",
		},
		{
			name: "conclusion heading",
			text: "Lead.\n\n## Conclusion\nEnergy is quantized.",
			want: "Energy is quantized.",
		},
		{
			name: "first labeled synonym in text order wins",
			text: "Conclusion:\nFirst.\n\nInsight:\nSecond.",
			want: "First.",
		},
		{
			name: "last prose paragraph fallback",
			text: "Lead.\n\nMiddle paragraph.\n\nClosing remark.",
			want: "Closing remark.",
		},
		{
			name: "skips trailing math",
			text: "Lead.\n\nClosing remark.\n\n$$x = 1$$",
			want: "Closing remark.",
		},
		{
			name: "skips trailing code block with blank lines inside",
			text: "Lead.\n\nClosing remark.\n\n```python\nimport numpy\n\nprint(1)\n```",
			want: "Closing remark.",
		},
		{
			name: "only math",
			text: "$$a$$\n\n$$b$$",
			want: "",
		},
		{
			name: "skips trailing table",
			text: "Lead para.\n\n| State | Probability |\n|---|---|\n| 0 | 1 |",
			want: "Lead para.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractInsight(tt.text))
		})
	}
}

// --- classification ---

func TestIsThoughtExperiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint types.ContentType
		want bool
	}{
		{"hint forces", "Plain prose about orbits.", types.ContentThoughtExperiment, true},
		{"hint case insensitive", "Plain prose.", "Thought_Experiment", true},
		{"keyword paradox", "The twin PARADOX revisited.", "", true},
		{"keyword phrase", "This thought experiment shows...", "", true},
		{"decomposed umlaut", "Schro\u0308dinger's box.", "", true},
		{"ascii spelling", "schrodinger equation", "", true},
		{"represent is not a keyword", "We represent the state as a vector.", "", false},
		{"no keyword", "Photosynthesis converts light.", "", false},
		{"other hint", "Photosynthesis.", "general", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsThoughtExperiment(tt.text, tt.hint))
		})
	}
}

func TestExtract_HintAlwaysYieldsThoughtExperiment(t *testing.T) {
	for _, text := range []string{"", "x", "Plain prose.\n\nMore prose.", "$$a$$"} {
		resp := Extract(text, types.ContentThoughtExperiment)
		require.NotNil(t, resp.ThoughtExperiment, "text %q", text)
		assert.NotNil(t, resp.ThoughtExperiment.Principles)
		assert.NotNil(t, resp.ThoughtExperiment.Implications)
	}
}

// --- thought experiment ---

func TestExtractThoughtExperiment(t *testing.T) {
	text := strings.Join([]string{
		"Summary:",
		"A cat, a flask of poison, and a radioactive source.",
		"",
		"## Setup",
		"A sealed steel chamber holds the cat.",
		"",
		"Key Concepts:",
		"1. Superposition",
		"2. Measurement",
		"",
		"Consequences:",
		"The observer's role in collapse remains contested.",
	}, "\n")

	te := extractThoughtExperiment(text, "fallback")

	assert.Equal(t, "A sealed steel chamber holds the cat.", te.Scenario)
	assert.Equal(t, []string{"Superposition", "Measurement"}, te.Principles)
	assert.Equal(t, []string{"The observer's role in collapse remains contested."}, te.Implications)
}

func TestExtractThoughtExperiment_StarBullets(t *testing.T) {
	text := "Outcomes:\n* Branching worlds\n* No collapse\n"

	te := extractThoughtExperiment(text, "lead")

	assert.Equal(t, "lead", te.Scenario)
	assert.Empty(t, te.Principles)
	assert.Equal(t, []string{"Branching worlds", "No collapse"}, te.Implications)
}

// --- whole-record properties ---

func TestExtract_Idempotent(t *testing.T) {
	text := strings.Join([]string{
		"# Summary",
		"Entangled pairs violate Bell inequalities.",
		"",
		"$$S = 2\\sqrt{2}$$",
		"",
		"| Outcome | Frequency |",
		"|:--|--:|",
		"| ++ | 0.43 |",
		"| -- | n/a |",
		"",
		"Conclusion:",
		"Local realism fails.",
	}, "\n")

	first := Extract(text, "")
	second := Extract(text, "")

	assert.Equal(t, first, second)
	require.NotNil(t, first.Chart)
	assert.Equal(t, []string{"++", "--"}, first.Chart.Labels)
	assert.Equal(t, []float64{0.43, 0}, first.Chart.Values)
}

func TestExtract_SummaryNeverEmptyForNonBlankText(t *testing.T) {
	inputs := []string{
		"x",
		"\n\n  lone  \n",
		"$$a$$",
		"| a | b |\n|---|---|\n| 1 | 2 |",
		"Summary:",
	}
	for _, text := range inputs {
		assert.NotEmpty(t, Extract(text, "").Summary, "text %q", text)
	}
}

func TestExtract_EquationsNeverContainDelimiter(t *testing.T) {
	inputs := []string{
		"Equations:\n$$E=mc^2\nF=ma",
		"Equations:\nF = ma $$\n$$",
		"## Equations\n$$ $$ $$\np = mv",
		"Lead $$a$$ then $$ unclosed",
		"$$$$\n\nEquations:\n$$x$",
		"Equations: $$inline",
	}
	for _, text := range inputs {
		for _, eq := range Extract(text, "").Equations {
			assert.NotContains(t, eq, "$$", "text %q", text)
			assert.NotEmpty(t, eq, "text %q", text)
		}
	}
}

func TestExtract_ChartDataSectionEnds(t *testing.T) {
	block := "```json\n{\"labels\": [\"a\"], \"values\": [1]}\n```"
	inputs := []string{
		"Chart Data:\nnot available\n\n## Code\n\n" + block,
		"Chart Data:\nnone\n\nNotes:\n" + block,
		"## Chart Data\n\nPending.\n\n" + block,
	}
	for _, text := range inputs {
		assert.Nil(t, Extract(text, "").Chart, "text %q", text)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	resp := Extract("", "")

	assert.Empty(t, resp.Summary)
	assert.NotNil(t, resp.Equations)
	assert.Empty(t, resp.Equations)
	assert.Empty(t, resp.Insight)
	assert.Nil(t, resp.Chart)
	assert.Nil(t, resp.ThoughtExperiment)
}

func TestExtractor_CustomVocabulary(t *testing.T) {
	ex := New(types.Vocabulary{
		ThoughtExperimentKeywords: []string{"gedanken"},
		LabelColumns:              []string{"isotope"},
		ValueColumns:              []string{"abundance"},
	}, nil)

	text := "A gedanken setup.\n\n| Isotope | Abundance |\n|---|---|\n| C-12 | 0.989 |\n| C-13 | 0.011 |"
	resp := ex.Extract(text, "")

	require.NotNil(t, resp.ThoughtExperiment)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, "Theoretical Outcomes", resp.Chart.Title)
	assert.Equal(t, []string{"C-12", "C-13"}, resp.Chart.Labels)
	assert.False(t, ex.IsThoughtExperiment("a paradox", ""))
}
