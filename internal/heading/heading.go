// Package heading recognizes section headings in cleaned paragraphs and
// assigns each paragraph the most recent heading seen before it.
package heading

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/flashgest/internal/document"
)

var labeled = regexp.MustCompile(`(?i)^(module|chapter|section|unit|topic)\b[:\s\-]*(.*)$`)

// Detect reports whether line reads as a heading and returns its normalized
// form. Labeled headings ("CHAPTER 3: Cells") are returned as the
// title-cased label followed by the rest of the line. Otherwise a line of
// two to eight words that is all caps or fully capitalized counts.
func Detect(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < 3 {
		return "", false
	}

	if m := labeled.FindStringSubmatch(line); m != nil {
		// A Caser carries state and is not shared between goroutines.
		label := cases.Title(language.English).String(m[1])
		h := strings.TrimSpace(label + " " + strings.TrimSpace(m[2]))
		h = strings.Trim(h, " -:\t\n")
		if h == "" {
			return "", false
		}
		return h, true
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 8 {
		return "", false
	}
	if isUpper(line) || capitalized(words) {
		return line, true
	}
	return "", false
}

// Map returns one entry per paragraph. A paragraph whose first line is a
// heading starts a new section; the others inherit the previous heading, and
// paragraphs before the first heading have none.
func Map(paras []document.Paragraph) []document.HeadingEntry {
	out := make([]document.HeadingEntry, len(paras))
	var current *string
	for i, p := range paras {
		first, _, _ := strings.Cut(p.Text, "\n")
		if h, ok := Detect(first); ok {
			current = document.HeadingOf(h)
		}
		out[i] = document.HeadingEntry{Index: i, Heading: current}
	}
	return out
}

// isUpper matches at least one cased letter and no lowercase letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func capitalized(words []string) bool {
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
