// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns post titles into URL slugs. Accented letters are
// folded to their ASCII base letter; other non-ASCII text is dropped.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed matches anything that is not a word character, space or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of whitespace and hyphens into one hyphen.
	separators = regexp.MustCompile(`[-\s]+`)
)

// nonASCII reports runes outside ASCII, including the combining marks
// NFKD splits off accented letters.
var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// Generate creates a URL slug from a title.
// Example: "Café au lait, 2026!" → "cafe-au-lait-2026"
func Generate(s string) string {
	// Transformers keep state, so each call builds its own chain.
	fold := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	result := strings.ToLower(folded)
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(strings.TrimSpace(result), "-")
	return strings.Trim(result, "-_")
}
