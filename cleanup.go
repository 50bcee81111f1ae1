package pageretriever

import (
	"regexp"
	"strings"
	"unicode"
)

// Comments the parser appends to rendered pages. Their content changes on
// every render (timings, cache keys), so they are stripped.
var volatileComments = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<!--\s*NewPP limit report.*?-->`),
	regexp.MustCompile(`(?s)<!--\s*Transclusion expansion time report.*?-->`),
	regexp.MustCompile(`(?s)<!--\s*Saved in parser cache with key.*?-->`),
}

// CleanupWikiHTML removes the parser's report comments from rendered HTML and
// trims trailing whitespace. Leading whitespace is kept.
func CleanupWikiHTML(html string) string {
	for _, re := range volatileComments {
		html = re.ReplaceAllString(html, "")
	}
	return strings.TrimRightFunc(html, unicode.IsSpace)
}
