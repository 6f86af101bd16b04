package services

import (
	"crypto/rand"
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`[\s_]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from a title: lowercase, whitespace to
// hyphens, non-word characters stripped, runs of hyphens collapsed.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// shortToken returns a URL-safe random hex string (n bytes, 2n chars),
// used to disambiguate slug collisions.
func shortToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out)
}
