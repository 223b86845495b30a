package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeLabel prepares a row label for section-synonym lookup:
// upper-cased, inner whitespace collapsed, trimmed.
func NormalizeLabel(input string) string {
	s := strings.ToUpper(input)
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
