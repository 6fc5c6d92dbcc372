// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	separators   = regexp.MustCompile(`[\s_-]+`)
	validSlug    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Make lowercases input, folds accented letters to ASCII, drops everything
// else that is not a letter, digit, space or hyphen, and joins words with "-".
// It returns "" when nothing usable is left.
func Make(input string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), input)
	if err != nil {
		folded = input
	}
	lower := strings.ToLower(folded)

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, lower)

	cleaned := invalidChars.ReplaceAllString(ascii, "")
	joined := separators.ReplaceAllString(strings.TrimSpace(cleaned), "-")
	return strings.Trim(joined, "-")
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

// WithSeq appends a sequence suffix: WithSeq("desk", 3) == "desk-3".
func WithSeq(base string, seq int) string {
	return fmt.Sprintf("%s-%d", base, seq)
}
