package pageretriever

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizePageName returns the title form the wiki expects: surrounding
// whitespace trimmed, spaces replaced by underscores, first letter upper-cased.
// Applying it twice gives the same result as applying it once.
//
// Example:
//
//	fmt.Println(pageretriever.NormalizePageName(" main page ")) // Main_page
func NormalizePageName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return name
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return name
	}
	return string(upper) + name[size:]
}
