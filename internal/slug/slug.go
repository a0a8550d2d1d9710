// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes the URL slugs sent with categories and tags.
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
	// separators become hyphens.
	separators = regexp.MustCompile(`[\s_/.]+`)
	// disallowed is everything left that is not a-z, 0-9 or a hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
	// hyphens collapses runs of hyphens.
	hyphens = regexp.MustCompile(`-{2,}`)
)

// Generate turns s into a lowercase ASCII slug. Diacritics are folded
// ("Café Noël" becomes "cafe-noel"); other symbols are dropped.
func Generate(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	result := strings.ToLower(strings.TrimSpace(folded))
	result = separators.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	result = hyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already a normalized, non-empty slug.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
