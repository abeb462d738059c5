// Package parser turns the labeled-line text returned by the language model
// into typed records. Parsing never fails: every field that is missing or
// malformed falls back to its own default.
package parser

import "strings"

// field is one "Label: value" line.
type field struct {
	label string
	value string
}

// labeledLines splits text into trimmed lines and keeps those carrying a
// colon. Labels are lowercased and inner whitespace is collapsed so that
// "Overall  Score" matches "overall score".
func labeledLines(text string) []field {
	var fields []field
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields = append(fields, field{
			label: strings.Join(strings.Fields(strings.ToLower(label)), " "),
			value: strings.TrimSpace(value),
		})
	}
	return fields
}

// first returns the value of the first line whose label is one of labels.
func first(fields []field, labels ...string) (string, bool) {
	for _, f := range fields {
		for _, l := range labels {
			if f.label == l {
				return f.value, true
			}
		}
	}
	return "", false
}

// trimDecoration removes brackets, quotes and trailing punctuation the model
// sometimes copies from the prompt template, e.g. "[hr]" or "finance.".
func trimDecoration(s string) string {
	return strings.Trim(s, " \t[](){}<>\"'`*.,;!")
}

// trimNumber strips wrapping brackets and quotes but keeps dots, so ".5"
// still parses.
func trimNumber(s string) string {
	return strings.Trim(s, " \t[](){}<>\"'`*")
}
