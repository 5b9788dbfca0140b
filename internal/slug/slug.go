// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonSlugChars matches anything that isn't a word character, whitespace,
	// or hyphen. Word characters include the underscore.
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	// whitespaceRuns collapses consecutive whitespace into one hyphen.
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// The result is empty when the input contains no word characters at all
// (e.g. pure punctuation). Callers that require a non-empty slug must
// guard for that case.
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonSlugChars.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}
