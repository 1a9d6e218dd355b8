// Package htmltext converts the HTML fragments found inside agenda export
// fields into plain text. The exports embed a small, fixed set of markup
// (paragraphs, line breaks, superscript, bold) plus character entities;
// anything else tag-shaped is dropped wholesale. This is deliberately not a
// general HTML sanitizer.
package htmltext

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled patterns; Clean runs once per field on large exports.
var (
	remainingTags = regexp.MustCompile(`<[^>]+>`)
	blankRuns     = regexp.MustCompile(`\n\s*\n`)
)

// replacer handles the fixed tag allowlist: paragraph closers and line
// breaks become newlines, the rest vanish with no replacement.
var replacer = strings.NewReplacer(
	"<p>", "",
	"</p>", "\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"<sup>", "",
	"</sup>", "",
	"<strong>", "",
	"</strong>", "",
)

// Clean decodes HTML entities, strips the known tags while preserving line
// breaks, removes any leftover tag-like substrings, collapses runs of blank
// lines into a single newline and trims the result. It is a total function:
// it never fails, and empty input yields the empty string.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	// Entities are decoded before tag stripping, so encoded markup such
	// as "&lt;p&gt;" is removed like literal markup.
	s = html.UnescapeString(s)

	s = replacer.Replace(s)
	s = remainingTags.ReplaceAllString(s, "")

	s = blankRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
