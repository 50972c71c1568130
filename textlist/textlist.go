// Package textlist encodes the multi-value fields the admin editors show as
// a single text input: achievements one per line, technologies comma
// separated.
package textlist

import "strings"

// SplitLines splits newline-delimited text, trimming items and dropping
// blank lines.
func SplitLines(text string) []string {
	return split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// SplitCSV splits comma-delimited text, trimming items and dropping empty
// ones.
func SplitCSV(text string) []string {
	return split(text, ",")
}

func split(text, sep string) []string {
	items := []string{}
	for _, part := range strings.Split(text, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
