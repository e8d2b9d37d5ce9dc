// Package htmltext turns marked-up table-cell content into clean
// multi-line text. Explicit <br> markers become line separators; every
// other tag is stripped; newlines that were already in the source text are
// layout noise and collapse to a single space.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	brTag   = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag  = regexp.MustCompile(`<[^>]+>`)
	newline = regexp.MustCompile(`[\r\n]+`)
)

// brPlaceholder stands in for <br> tags while the remaining markup and
// original newlines are removed. NUL cannot appear in parsed HTML text.
const brPlaceholder = "\x00br\x00"

// Normalize converts a raw HTML fragment into trimmed multi-line text.
func Normalize(fragment string) string {
	s := brTag.ReplaceAllString(fragment, brPlaceholder)
	s = anyTag.ReplaceAllString(s, "")
	// Runs of newlines in the source are not intentional breaks.
	s = newline.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, brPlaceholder, "\n")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// FromSelection normalizes the inner HTML of a goquery selection. If the
// fragment cannot be serialized it falls back to the selection's plain
// text with newlines collapsed; it never fails.
func FromSelection(sel *goquery.Selection) string {
	fragment, err := sel.Html()
	if err != nil {
		return Collapse(sel.Text())
	}
	return Normalize(fragment)
}

// Collapse flattens plain text to a single line: newline runs become one
// space and surrounding whitespace is trimmed.
func Collapse(text string) string {
	return strings.TrimSpace(newline.ReplaceAllString(text, " "))
}
