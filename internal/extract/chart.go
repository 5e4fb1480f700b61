// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/sciextract/pkg/types"
)

// Chart titles.
const (
	titleTheoretical = "Theoretical Outcomes"
	titleMeasurement = "Measurement Probabilities"
	titleCatState    = "Cat State Probabilities"
)

var (
	// tableSeparatorRe matches a markdown table separator row like |---|:--:|.
	tableSeparatorRe = regexp.MustCompile(`^\|?\s*:?-+:?\s*(?:\|\s*:?-+:?\s*)*\|?$`)

	// leadingNumberRe matches the numeric prefix of a cell ("0.5", "-1e-3", "50%").
	leadingNumberRe = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`)

	// fencedBodyRe captures the contents of the first fenced code block.
	fencedBodyRe = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\n(.*?)```")
)

// extractChart tries, in order: a markdown table, a Chart Data JSON block,
// and the Schrödinger's cat default. The first strategy to succeed wins.
func (e *Extractor) extractChart(text string, thought bool) *types.ChartData {
	title := titleMeasurement
	if thought {
		title = titleTheoretical
	}

	if c := e.chartFromTable(text, title); c != nil {
		return c
	}
	if c := e.chartFromDataBlock(text, title); c != nil {
		return c
	}
	return chartFromCatDefault(text)
}

// tableBlocks returns runs of consecutive pipe-prefixed lines.
func tableBlocks(text string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range splitLines(text) {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "|") {
			cur = append(cur, t)
			continue
		}
		if len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// splitRow splits a pipe-delimited row into trimmed cells, dropping the
// empty cells produced by the outer pipes.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// columnIndex returns the first header cell containing any keyword,
// skipping the column at skip.
func columnIndex(header []string, keywords []string, skip int) int {
	for i, cell := range header {
		if i == skip {
			continue
		}
		if containsAny(fold(cell), keywords) {
			return i
		}
	}
	return -1
}

// parseNumber reads the numeric prefix of a table cell after stripping
// emphasis and math markers.
func parseNumber(cell string) (float64, bool) {
	cell = strings.Trim(strings.TrimSpace(cell), "*_`$ ")
	m := leadingNumberRe.FindString(cell)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// chartFromTable builds a chart from the first well-formed table whose
// header names both a label column and a value column. Rows with an
// unparsable value keep their label and record 0.
func (e *Extractor) chartFromTable(text, title string) *types.ChartData {
	for _, block := range tableBlocks(text) {
		if len(block) < 3 || !tableSeparatorRe.MatchString(block[1]) {
			continue
		}

		header := splitRow(block[0])
		labelCol := columnIndex(header, e.labelColumns, -1)
		valueCol := columnIndex(header, e.valueColumns, labelCol)
		if labelCol < 0 || valueCol < 0 {
			e.log.Debug("table skipped: no label/value columns", zap.Strings("header", header))
			continue
		}

		chart := &types.ChartData{
			Labels: make([]string, 0, len(block)-2),
			Values: make([]float64, 0, len(block)-2),
			Title:  title,
		}
		parsed := false
		for _, row := range block[2:] {
			cells := splitRow(row)
			var label string
			var value float64
			if labelCol < len(cells) {
				label = cells[labelCol]
			}
			if valueCol < len(cells) {
				if v, ok := parseNumber(cells[valueCol]); ok {
					value = v
					parsed = true
				}
			}
			chart.Labels = append(chart.Labels, label)
			chart.Values = append(chart.Values, value)
		}

		if parsed {
			return chart
		}
		e.log.Debug("table skipped: no numeric values", zap.Strings("header", header))
	}
	return nil
}

// chartBlock is the JSON shape accepted in a Chart Data section.
type chartBlock struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title"`
}

// chartFromDataBlock parses the fenced block that opens a Chart Data section
// as JSON. Only blank lines may separate it from the header. Malformed JSON
// or mismatched arrays yield no chart.
func (e *Extractor) chartFromDataBlock(text, title string) *types.ChartData {
	sec, ok := findSection(text, chartDataLabels)
	if !ok {
		return nil
	}

	lines := splitLines(text)
	i := sec.end
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
		return nil
	}

	rest := strings.Join(lines[i:], "\n")
	m := fencedBodyRe.FindStringSubmatchIndex(rest)
	if m == nil || strings.TrimSpace(rest[:m[0]]) != "" {
		return nil
	}
	body := rest[m[2]:m[3]]

	var block chartBlock
	if err := json.Unmarshal([]byte(body), &block); err != nil {
		e.log.Debug("chart data block skipped", zap.Error(err))
		return nil
	}
	if len(block.Labels) == 0 || len(block.Labels) != len(block.Values) {
		e.log.Debug("chart data block skipped: label/value mismatch",
			zap.Int("labels", len(block.Labels)), zap.Int("values", len(block.Values)))
		return nil
	}

	if block.Title != "" {
		title = block.Title
	}
	return &types.ChartData{Labels: block.Labels, Values: block.Values, Title: title}
}

// chartFromCatDefault returns the two-state superposition chart when the
// text talks about Schrödinger's cat.
func chartFromCatDefault(text string) *types.ChartData {
	folded := fold(text)
	if !containsAny(folded, []string{fold("schrödinger"), "schrodinger"}) || !strings.Contains(folded, "cat") {
		return nil
	}
	return &types.ChartData{
		Labels: []string{"Alive", "Dead"},
		Values: []float64{0.5, 0.5},
		Title:  titleCatState,
	}
}
