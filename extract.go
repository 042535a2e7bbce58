package shotman

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// urlTokenPattern matches HTTP(S) URL tokens embedded in arbitrary text.
// Terminators are whitespace, angle brackets, quotes, braces, pipes,
// backslashes, carets, backticks and square brackets.
var urlTokenPattern = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

var unsafeNameChars = regexp.MustCompile(`[^\w\-.]`)

// ExtractURLs scans free-form text and returns the deduplicated set of
// origin URLs (scheme://host[:port]) found in it, sorted for determinism.
// Malformed matches and matches without a host are silently skipped.
func ExtractURLs(text string) []string {
	seen := make(map[string]struct{})

	for _, match := range urlTokenPattern.FindAllString(text, -1) {
		u, err := url.Parse(match)
		if err != nil || u.Host == "" {
			continue
		}
		origin := strings.ToLower(u.Scheme) + "://" + u.Host
		seen[origin] = struct{}{}
	}

	origins := make([]string, 0, len(seen))
	for origin := range seen {
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	return origins
}

// SanitizeHost maps a host to a filesystem-safe name by replacing every
// character outside [A-Za-z0-9_.-] with an underscore.
func SanitizeHost(host string) string {
	return unsafeNameChars.ReplaceAllString(host, "_")
}

// Filename derives the deterministic image file name for an origin URL.
// Two hosts that sanitize identically map to the same name; the mapping
// upsert is last-writer-wins in that case.
func Filename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return SanitizeHost(rawURL) + ".jpg"
	}
	return SanitizeHost(u.Host) + ".jpg"
}
