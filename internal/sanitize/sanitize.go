// Package sanitize cleans user-supplied strings before they are stored with a
// run or used to build output paths. Titles end up inside SVG documents and
// CSV/JSON exports; file bases end up as file names on disk.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the maximum length, in runes, of a chart title.
const MaxTitleLength = 120

// MaxBaseLength is the maximum length of an output file name stem.
const MaxBaseLength = 80

var (
	// reMarkupTag matches XML/HTML tags and processing instructions.
	reMarkupTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	reWhitespace = regexp.MustCompile(`\s+`)

	reRepeatedHyphens     = regexp.MustCompile(`-{2,}`)
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
	reRepeatedDots        = regexp.MustCompile(`\.{2,}`)
)

// Title returns a single-line chart title:
//  1. control characters are dropped
//  2. markup tags are stripped
//  3. whitespace runs collapse to one space
//  4. the result is trimmed and truncated to MaxTitleLength runes
func Title(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reMarkupTag.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxTitleLength {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:MaxTitleLength])) + "..."
	}
	return s
}

// FileBase returns a file name stem containing only [a-zA-Z0-9._-].
// Spaces become hyphens, separator runs collapse, and leading dots are
// removed so the result can never name a hidden file or a parent directory.
// An empty result means nothing usable was left.
func FileBase(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.TrimSpace(input) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	s := b.String()

	s = reRepeatedHyphens.ReplaceAllString(s, "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")
	s = reRepeatedDots.ReplaceAllString(s, ".")
	s = strings.TrimLeft(s, ".")

	if len(s) > MaxBaseLength {
		s = s[:MaxBaseLength]
	}
	return s
}

// stripControlChars removes C0 control characters and DEL.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			if r == '\n' || r == '\t' {
				b.WriteRune(' ')
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
