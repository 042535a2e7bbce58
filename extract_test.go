package shotman

import (
	"net/url"
	"strings"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "duplicates collapse to origins",
			text: "visit http://a.com/x and also http://a.com/y plus https://b.org",
			want: []string{"http://a.com", "https://b.org"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "no matches",
			text: "nothing to see here, ftp://old.example.com either",
			want: nil,
		},
		{
			name: "case-insensitive scheme",
			text: "HTTPS://Example.com/path?q=1#frag",
			want: []string{"https://Example.com"},
		},
		{
			name: "port preserved",
			text: "dev box at http://localhost:8080/admin",
			want: []string{"http://localhost:8080"},
		},
		{
			name: "surrounding noise",
			text: `<a href="https://b.org/page">link</a> {http://a.com} junk`,
			want: []string{"http://a.com", "https://b.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractURLs(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractURLs(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Every extracted element must be a bare origin: scheme and host only.
func TestExtractURLsOriginGrammar(t *testing.T) {
	text := "http://a.com/deep/path https://b.org?query=yes http://c.net#frag https://d.io:8443/x"

	for _, origin := range ExtractURLs(text) {
		u, err := url.Parse(origin)
		if err != nil {
			t.Fatalf("extracted origin %q does not parse: %v", origin, err)
		}
		if u.Scheme == "" || u.Host == "" {
			t.Errorf("extracted origin %q missing scheme or host", origin)
		}
		if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
			t.Errorf("extracted origin %q carries path/query/fragment", origin)
		}
	}
}

func TestExtractURLsNoDuplicates(t *testing.T) {
	text := strings.Repeat("see https://b.org/a https://b.org/b http://a.com ", 10)

	got := ExtractURLs(text)
	seen := make(map[string]bool)
	for _, origin := range got {
		if seen[origin] {
			t.Errorf("duplicate origin %q in result", origin)
		}
		seen[origin] = true
	}
	if len(got) != 2 {
		t.Errorf("expected 2 unique origins, got %d: %v", len(got), got)
	}
}

func TestSanitizeHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"sub.example.com", "sub.example.com"},
		{"localhost:8080", "localhost_8080"},
		{"weird host!", "weird_host_"},
		{"under_score-dash.dot", "under_score-dash.dot"},
	}

	for _, tt := range tests {
		if got := SanitizeHost(tt.host); got != tt.want {
			t.Errorf("SanitizeHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestFilenameDeterministic(t *testing.T) {
	a := Filename("https://example.com")
	b := Filename("https://example.com")
	if a != b {
		t.Errorf("Filename not deterministic: %q vs %q", a, b)
	}
	if a != "example.com.jpg" {
		t.Errorf("Filename(https://example.com) = %q, want example.com.jpg", a)
	}

	if got := Filename("http://localhost:8080"); got != "localhost_8080.jpg" {
		t.Errorf("Filename(http://localhost:8080) = %q, want localhost_8080.jpg", got)
	}
}
