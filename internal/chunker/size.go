package chunker

import "unicode/utf8"

// Length measures text in characters (runes), the unit of every chunk limit.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// tail returns the last n characters of text.
func tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(text)
	if total <= n {
		return text
	}
	skip := total - n
	for i := range text {
		if skip == 0 {
			return text[i:]
		}
		skip--
	}
	return ""
}
