// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// FileSuffix is appended to every generated output file name.
	FileSuffix = ".user.js"

	nameSeparator     = "/"
	displaySeparator  = " - "
	fileNameSeparator = "___"
)

// DisplayName renders a package name for the @name header line. The name
// is split on "/", each segment is rendered as capitalized words, and the
// segments are joined with " - ":
//
//	acme/widget        -> Acme - Widget
//	@my-org/coolTool   -> My Org - Cool Tool
func DisplayName(name string) string {
	title := cases.Title(language.Und)

	segments := strings.Split(name, nameSeparator)
	for i, segment := range segments {
		words := splitWords(segment)
		for j, w := range words {
			words[j] = title.String(w)
		}
		segments[i] = strings.Join(words, " ")
	}
	return strings.Join(segments, displaySeparator)
}

// FileName derives the output file name from a package name. Each
// "/"-separated segment is converted to lower snake case, segments are
// joined with "___", and ".user.js" is appended:
//
//	acme/widget -> acme___widget.user.js
func FileName(name string) string {
	lower := cases.Lower(language.Und)

	segments := strings.Split(name, nameSeparator)
	for i, segment := range segments {
		segments[i] = lower.String(strings.Join(splitWords(segment), "_"))
	}
	return strings.Join(segments, fileNameSeparator) + FileSuffix
}

// splitWords breaks s into words. Any rune that is not a letter or digit
// separates words, and so do case changes: a lower-case letter or digit
// followed by an upper-case letter ("coolTool"), and the last capital of
// an acronym followed by a lower-case letter ("XMLParser" -> XML, Parser).
func splitWords(s string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if len(current) > 0 && unicode.IsUpper(r) {
			prev := current[len(current)-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}

		current = append(current, r)
	}
	flush()

	return words
}
