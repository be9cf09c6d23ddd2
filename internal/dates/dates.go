// Package dates parses transaction dates using rules-file patterns.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Token patterns use YYYY/MM/DD-style placeholders, the convention bank rules
// files are written in. Longest tokens first so MM is consumed before M.
var tokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"M", "1",
	"DD", "02",
	"D", "2",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// Layout converts a date pattern to a Go reference layout. Patterns containing
// 'Y' are treated as token patterns; anything else is assumed to already be a
// Go layout (no Go layout element contains 'Y').
func Layout(pattern string) string {
	if strings.ContainsRune(pattern, 'Y') {
		return tokens.Replace(pattern)
	}
	return pattern
}

// Parse parses value using the configured pattern in the given location.
func Parse(pattern, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout(pattern), strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return t, nil
}
