// Package cleaner normalizes raw extracted text into paragraphs suitable for
// chunking: header/footer lines are dropped, words hyphenated across line
// breaks are rejoined, wrapped lines are merged back into sentences and
// whitespace is collapsed.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/flashgest/internal/document"
)

// mergeShortLine is the length under which a following line is folded into
// an unterminated line regardless of its first letter.
const mergeShortLine = 60

// noisePatterns match header, footer and front-matter lines.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*page\s+\d+\b`),
	regexp.MustCompile(`(?i)^lecture\b`),
	regexp.MustCompile(`(?i)^slide\b`),
	regexp.MustCompile(`(?i)^session\b`),
	regexp.MustCompile(`(?i)^table of contents\b`),
	regexp.MustCompile(`(?i)^authors?\b`),
	regexp.MustCompile(`(?i)\bisbn\b`),
	regexp.MustCompile(`(?i)\bdoi\b`),
	regexp.MustCompile(`©`),
	regexp.MustCompile(`(?i)all rights reserved`),
	regexp.MustCompile(`^[A-Z]{2,}\d{3,}\b`),
}

var (
	horizontalSpace = regexp.MustCompile(`[\p{Zs}\t\f\v]+`)
	hyphenBreak     = regexp.MustCompile(`([\p{L}\p{N}])- ?\n ?([\p{L}\p{N}])`)
	terminalPunct   = regexp.MustCompile(`[.!?;:]$`)
	numericLine     = regexp.MustCompile(`^\d{1,4}$`)
	pageMarker      = regexp.MustCompile(`(?i)^page\s+\d+$`)
	isbnDOI         = regexp.MustCompile(`(?i)\b(isbn|doi)\b`)
	copyright       = regexp.MustCompile(`(?i)all rights reserved|©`)
)

// IsNoise reports whether a single trimmed line is a header, footer, page
// marker or front-matter line.
func IsNoise(line string) bool {
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Clean returns raw with noise removed. Paragraphs are separated by a blank
// line; lines that were not merged stay on their own line within a paragraph.
// An empty result means nothing usable survived.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(raw)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = repairHyphenation(text)

	lines := mergeLines(strings.Split(text, "\n"))
	lines = filterLines(lines)
	return joinParagraphs(lines)
}

// Paragraphs cleans each paragraph and drops the ones that come out empty.
// Page metadata is carried over unchanged.
func Paragraphs(paras []document.Paragraph) []document.Paragraph {
	out := make([]document.Paragraph, 0, len(paras))
	for _, p := range paras {
		text := Clean(p.Text)
		if text == "" {
			continue
		}
		out = append(out, document.Paragraph{Text: text, Page: p.Page})
	}
	return out
}

func repairHyphenation(text string) string {
	// A single pass cannot join "a-\nb-\nc" because matches may not overlap.
	for {
		next := hyphenBreak.ReplaceAllString(text, "$1$2")
		if next == text {
			return text
		}
		text = next
	}
}

// mergeLines drops noise lines and folds wrapped lines into the line they
// continue. Blank lines are kept as paragraph boundaries.
func mergeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			out = append(out, "")
			i++
			continue
		}
		if IsNoise(line) {
			i++
			continue
		}

		buf := []string{line}
		skipped := false
		j := i + 1
		for j < len(lines) {
			next := strings.TrimSpace(lines[j])
			if next == "" || terminalPunct.MatchString(buf[len(buf)-1]) {
				break
			}
			if IsNoise(next) {
				// A page footer between two halves of a sentence.
				skipped = true
				j++
				continue
			}
			if startsLower(next) || utf8.RuneCountInString(next) < mergeShortLine {
				buf = append(buf, next)
				skipped = false
				j++
				continue
			}
			break
		}
		merged := strings.Join(buf, " ")
		switch {
		case IsNoise(merged):
			out = append(out, "")
		case skipped:
			// The lines around the dropped footer were not joined; keep
			// them apart so a second pass does not join them either.
			out = append(out, merged, "")
		default:
			out = append(out, merged)
		}
		i = j
	}
	return out
}

func filterLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	prev := ""
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if s == "" {
			out = append(out, "")
			prev = ""
			continue
		}
		if numericLine.MatchString(s) || pageMarker.MatchString(s) {
			continue
		}
		if s == prev {
			continue
		}
		if isbnDOI.MatchString(s) || copyright.MatchString(s) {
			out = append(out, "")
			prev = ""
			continue
		}
		out = append(out, s)
		prev = s
	}
	return out
}

func joinParagraphs(lines []string) string {
	var paras []string
	var cur []string
	for _, ln := range lines {
		if ln == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, "\n"))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, ln)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, "\n"))
	}
	return strings.TrimSpace(strings.Join(paras, "\n\n"))
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
