// Package textutil holds small pure string helpers shared by document
// synthesis and photo ingest: ordinal day suffixes, sentence casing,
// filename normalization, and Filipino full-name parsing.
package textutil

import (
	"strconv"
	"strings"
	"unicode"
)

// Ordinal renders n with its English ordinal suffix: 1st, 2nd, 3rd, 4th.
// 11-13 take "th" regardless of the last digit (11th, 112th, 13th).
func Ordinal(n int) string {
	suffix := "th"
	switch v := n % 100; {
	case v >= 11 && v <= 13:
		// teens override the last-digit rule
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// SentenceCase upper-cases the first character and lower-cases the rest.
// Used for free-text enumerations such as civil status ("MARRIED" ->
// "Married").
func SentenceCase(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	head := strings.ToUpper(string(r[0]))
	return head + strings.ToLower(string(r[1:]))
}

// latinFold maps accented Latin letters onto their base letter. The photo
// filename convention keeps only [A-Z0-9.-], so accents from Filipino and
// Spanish names (Peña, Muñoz, José) must fold rather than disappear.
var latinFold = map[rune]rune{
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A', 'Å': 'A',
	'È': 'E', 'É': 'E', 'Ê': 'E', 'Ë': 'E',
	'Ì': 'I', 'Í': 'I', 'Î': 'I', 'Ï': 'I',
	'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O',
	'Ù': 'U', 'Ú': 'U', 'Û': 'U', 'Ü': 'U',
	'Ñ': 'N', 'Ç': 'C', 'Ý': 'Y',
}

// NormalizeFilename upper-cases a name part, folds diacritics, collapses
// whitespace runs into single hyphens, and strips anything that is not
// [A-Z0-9.-]. The result is deterministic for a given input, which is what
// makes photo uploads idempotent per resident.
func NormalizeFilename(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if folded, ok := latinFold[r]; ok {
			r = folded
		}
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('-')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-.")
}

// PhotoFilename derives a resident's photo object key from name parts.
// Identical inputs always produce the same key, so re-uploads overwrite.
func PhotoFilename(lastName, firstName, middleName, suffix string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{lastName, firstName, middleName} {
		if n := NormalizeFilename(p); n != "" {
			parts = append(parts, n)
		}
	}
	name := strings.Join(parts, "-")
	if n := NormalizeFilename(suffix); n != "" {
		name += "-" + n
	}
	return name + ".jpg"
}

var nameSuffixes = map[string]bool{
	"JR": true, "SR": true, "II": true, "III": true, "IV": true, "V": true,
}

// NameParts is a parsed full name.
type NameParts struct {
	First  string
	Middle string
	Last   string
	Suffix string
}

// ParseFullName splits a free-form full name into parts. Two tokens read as
// first/last, three as first/middle/last, four or more check the final token
// against the common generational suffixes (JR, SR, II-V).
func ParseFullName(fullName string) NameParts {
	parts := strings.Fields(fullName)

	switch {
	case len(parts) == 2:
		return NameParts{First: parts[0], Last: parts[1]}
	case len(parts) == 3:
		return NameParts{First: parts[0], Middle: parts[1], Last: parts[2]}
	case len(parts) >= 4:
		last := parts[len(parts)-1]
		if nameSuffixes[strings.ToUpper(strings.TrimSuffix(last, "."))] {
			return NameParts{
				First:  parts[0],
				Middle: parts[1],
				Last:   strings.Join(parts[2:len(parts)-1], " "),
				Suffix: last,
			}
		}
		return NameParts{
			First:  parts[0],
			Middle: parts[1],
			Last:   strings.Join(parts[2:], " "),
		}
	}
	return NameParts{First: strings.TrimSpace(fullName)}
}
