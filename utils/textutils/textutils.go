// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds the string normalization shared by extraction,
// caching and scoring. All of them must agree on what "the same name" means.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func stripMarks(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		s,
	)

	return s
}

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	return stripMarks(strings.TrimSpace(strings.ToLower(s)))
}

// FoldAccents removes diacritics but keeps the case, so "Asunción" becomes
// "Asuncion". Used where capitalization still carries meaning.
func FoldAccents(s string) string {
	return stripMarks(s)
}

// Normalize lowercases, strips accents and replaces every rune that is not a
// letter or digit with a space, collapsing runs of spaces.
// "  Mar del Plata," and "mar  del plata" normalize to "mar del plata".
func Normalize(s string) string {
	folded := LowerASCIIFolding(s)

	var b strings.Builder

	b.Grow(len(folded))

	pendingSpace := false

	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSpace = b.Len() > 0

			continue
		}

		if pendingSpace {
			b.WriteByte(' ')

			pendingSpace = false
		}

		b.WriteRune(r)
	}

	return b.String()
}

// ContainsPhrase reports whether needle occurs in haystack as a sequence of
// whole words. Both arguments must already be Normalize'd.
func ContainsPhrase(haystack, needle string) bool {
	if needle == "" {
		return false
	}

	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
