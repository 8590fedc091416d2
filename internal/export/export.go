// Package export renders a record's flashcards for use outside the service:
// an Anki-importable TSV file and a standalone HTML study sheet.
package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Format names accepted by ForFormat.
const (
	FormatTSV  = "tsv"
	FormatHTML = "html"
)

var (
	tagInvalid = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	tagDashes  = regexp.MustCompile(`-+`)
)

// Tag converts a keyword to an Anki tag: lowercase, no spaces, at most 50
// characters.
func Tag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = tagInvalid.ReplaceAllString(s, "-")
	s = tagDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if utf8.RuneCountInString(s) > 50 {
		s = strings.Trim(string([]rune(s)[:50]), "-")
	}
	return s
}

// Tags converts keywords to distinct, non-empty tags in order.
func Tags(keywords []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range keywords {
		t := Tag(k)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ContentType returns the MIME type and file extension for format.
func ContentType(format string) (string, string, error) {
	switch format {
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8", ".tsv", nil
	case FormatHTML:
		return "text/html; charset=utf-8", ".html", nil
	default:
		return "", "", fmt.Errorf("unknown export format %q", format)
	}
}

// Filename builds a download name from the source document name.
func Filename(source, ext string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base = Tag(base); base == "" {
		base = "flashcards"
	}
	return base + ext
}
