package pageretriever

import "testing"

func TestCleanupWikiHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "limit report",
			in:   "<!-- \nNewPP limit report\nCPU time usage: 0.012 seconds\n-->\n<p>content</p>\n",
			want: "\n<p>content</p>",
		},
		{
			name: "all three reports",
			in: "<p>content</p><!--NewPP limit report a-->" +
				"<!--\nTransclusion expansion time report (%,ms,calls,template)\n100.00% -->" +
				"<!-- Saved in parser cache with key wiki:pcache:idhash:1-0 -->  \n\t",
			want: "<p>content</p>",
		},
		{
			name: "unrelated comments kept",
			in:   "<!-- keep me --><p>x</p>",
			want: "<!-- keep me --><p>x</p>",
		},
		{
			name: "non-greedy",
			in:   "<!-- NewPP limit report --><p>between</p><!-- other -->",
			want: "<p>between</p><!-- other -->",
		},
		{
			name: "leading whitespace preserved",
			in:   "  <p>x</p>  \n",
			want: "  <p>x</p>",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanupWikiHTML(tc.in); got != tc.want {
				t.Fatalf("CleanupWikiHTML() = %q, want %q", got, tc.want)
			}
		})
	}
}
