// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

var (
	// paragraphBreakRe splits text on blank lines (lines holding only whitespace).
	paragraphBreakRe = regexp.MustCompile(`\n[ \t\r]*\n`)

	// labelLineRe matches a short bare label such as "Key Concepts:" that
	// opens a new section.
	labelLineRe = regexp.MustCompile(`^\**[A-Za-z][A-Za-z0-9 '/&()-]{0,40}\**:\**$`)

	// fencedBlockRe matches a fenced code block including its fences.
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
)

// section is a labeled region of text located by findSection.
type section struct {
	label string
	body  string
	// end is the line index just past the header line.
	end int
}

// splitLines normalizes line endings and splits text into lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// isHeading returns true for markdown ATX headings of any level.
func isHeading(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "#") {
		return false
	}
	rest := strings.TrimLeft(t, "#")
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// isBoundary reports whether line ends a section body: a markdown heading
// or a bare label line ending in a colon.
func isBoundary(line string) bool {
	t := strings.TrimSpace(line)
	return isHeading(t) || labelLineRe.MatchString(t)
}

// matchHeader reports whether line introduces a section for one of labels.
// A header is either a level 1 or 2 markdown heading ("## Summary") or a
// line starting with the label followed by a colon ("Summary:"). Bold
// markers are ignored. Text after the colon is returned as inline content.
func matchHeader(line string, labels []string) (label, inline string, ok bool) {
	t := strings.TrimSpace(line)
	heading := false
	if isHeading(t) {
		level := len(t) - len(strings.TrimLeft(t, "#"))
		if level > 2 {
			return "", "", false
		}
		t = strings.TrimSpace(t[level:])
		heading = true
	}
	t = strings.TrimSpace(strings.ReplaceAll(t, "**", ""))

	for _, l := range labels {
		if len(t) < len(l) || !strings.EqualFold(t[:len(l)], l) {
			continue
		}
		rest := strings.TrimSpace(t[len(l):])
		switch {
		case rest == "" && heading:
			return l, "", true
		case strings.HasPrefix(rest, ":"):
			return l, strings.TrimSpace(rest[1:]), true
		}
	}
	return "", "", false
}

// findSection locates the first section in text whose header matches any of
// labels, in order of appearance. The body runs from the header (including
// any inline content after its colon) to the next blank line or the next
// heading. Leading blank lines after the header are skipped.
func findSection(text string, labels []string) (section, bool) {
	lines := splitLines(text)
	for i, line := range lines {
		label, inline, ok := matchHeader(line, labels)
		if !ok {
			continue
		}

		var body []string
		if inline != "" {
			body = append(body, inline)
		}
		j := i + 1
		if inline == "" {
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
		}
		for ; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" || isBoundary(lines[j]) {
				break
			}
			body = append(body, lines[j])
		}

		return section{
			label: label,
			body:  strings.TrimSpace(strings.Join(body, "\n")),
			end:   i + 1,
		}, true
	}
	return section{}, false
}

// paragraphs splits text into trimmed, non-empty blank-line separated blocks.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range paragraphBreakRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// firstParagraph returns the first non-empty paragraph of text.
func firstParagraph(text string) string {
	ps := paragraphs(text)
	if len(ps) == 0 {
		return ""
	}
	return ps[0]
}

// listItemRe matches bulleted ("- x", "* x") and numbered ("1. x") list lines.
var listItemRe = regexp.MustCompile(`^\s*(?:[-*]|\d+\.)\s+(.+?)\s*$`)

// parseList returns the list items of body with their markers stripped. When
// no line is a list item, the whole body is returned as a single element.
// An empty body yields an empty list.
func parseList(body string) []string {
	items := []string{}
	for _, line := range splitLines(body) {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
		}
	}
	if len(items) == 0 {
		if b := strings.TrimSpace(body); b != "" {
			items = append(items, b)
		}
	}
	return items
}
