package pageretriever

import "github.com/microcosm-cc/bluemonday"

// htmlSanitizer strips scripts, event handlers and other active content from
// rendered pages that are shown to users as-is.
type htmlSanitizer struct {
	policy *bluemonday.Policy
}

func newHTMLSanitizer() *htmlSanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class", "id").Globally()
	return &htmlSanitizer{policy: policy}
}

func (s *htmlSanitizer) Sanitize(html string) string {
	if s == nil {
		return html
	}
	return s.policy.Sanitize(html)
}
