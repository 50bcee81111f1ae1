package pageretriever

import "fmt"

// Mode selects what the API retriever asks the wiki for.
type Mode string

const (
	// ModeRaw fetches the latest revision's wikitext.
	ModeRaw Mode = "raw"
	// ModeRendered fetches parsed HTML. It is the default.
	ModeRendered Mode = "render"
)

// ParseMode maps a configuration string to a Mode. The empty string selects
// ModeRendered and "rendered" is accepted as an alias. Values must match
// exactly; surrounding whitespace is rejected.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeRendered), "rendered":
		return ModeRendered, nil
	case string(ModeRaw):
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("%w: unknown retrieval mode %q", ErrInvalidConfiguration, s)
	}
}

func (m Mode) String() string {
	if m == "" {
		return string(ModeRendered)
	}
	return string(m)
}
