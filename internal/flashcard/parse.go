package flashcard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxRawChars is the longest generator output the parser will look at.
const MaxRawChars = 20000

var (
	seeAbove    = regexp.MustCompile(`(?i)see above`)
	pageRef     = regexp.MustCompile(`(?i)page\s+\d+`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	blankLines  = regexp.MustCompile(`\n\s*\n`)
	questionTag = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:q|question)\s*\d*\s*[:.)]\s*`)
	numbered    = regexp.MustCompile(`^\d+[.)]\s+`)
	answerTag   = regexp.MustCompile(`(?i)^(?:a|answer)\s*\d*\s*[:.)]\s*`)
	inlineSplit = regexp.MustCompile(`(?:^|\s)(?:A|Answer)\s?:\s*`)
)

type strategy func(s string) []Candidate

// Parse extracts question and answer pairs from free-form generator output.
// It tries a JSON array, then JSON embedded in prose, then Q/A-labeled
// lines and finally alternating blank-line separated blocks, returning the
// first non-empty result truncated to maxQuestions. maxQuestions <= 0
// means no limit. Empty, oversized or purely numeric output yields nothing.
func Parse(raw string, maxQuestions int) []Candidate {
	if suspicious(raw) {
		return nil
	}
	s := sanitize(raw)
	if strings.TrimSpace(s) == "" {
		return nil
	}

	for _, st := range []strategy{parseJSON, parseEmbeddedJSON, parseLabeledLines, parseAlternating} {
		out := st(s)
		if len(out) == 0 {
			continue
		}
		if maxQuestions > 0 && len(out) > maxQuestions {
			out = out[:maxQuestions]
		}
		return out
	}
	return nil
}

func suspicious(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || utf8.RuneCountInString(s) > MaxRawChars || digitsOnly.MatchString(s)
}

func sanitize(raw string) string {
	s := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(raw)
	s = seeAbove.ReplaceAllString(s, "")
	s = pageRef.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// parseJSON accepts a document that is entirely a JSON array of objects.
func parseJSON(s string) []Candidate {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return fromItems(items)
}

// parseEmbeddedJSON finds the first JSON array, or failing that the first
// JSON object, inside surrounding prose or code fences. Candidate spans
// start at the first opening bracket and end at each closing bracket after
// it, longest first.
func parseEmbeddedJSON(s string) []Candidate {
	for _, br := range []struct{ open, close byte }{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(s, br.open)
		if start < 0 {
			continue
		}
		for end := len(s); end > start; end-- {
			if s[end-1] != br.close {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(s[start:end]), &v); err != nil {
				continue
			}
			if out := fromValue(v); len(out) > 0 {
				return out
			}
			break
		}
	}
	return nil
}

func fromItems(items []json.RawMessage) []Candidate {
	var out []Candidate
	for _, raw := range items {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		if c, ok := fromObject(obj); ok {
			out = append(out, c)
		}
	}
	return out
}

func fromValue(v any) []Candidate {
	switch t := v.(type) {
	case []any:
		var out []Candidate
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := fromObject(obj); ok {
				out = append(out, c)
			}
		}
		return out
	case map[string]any:
		if cards, ok := t["flashcards"]; ok {
			return fromValue(cards)
		}
		if c, ok := fromObject(t); ok {
			return []Candidate{c}
		}
	}
	return nil
}

func fromObject(obj map[string]any) (Candidate, bool) {
	c := Candidate{
		Question: stringField(obj["question"]),
		Answer:   stringField(obj["answer"]),
	}
	if kws, ok := obj["keywords"].([]any); ok {
		for _, k := range kws {
			if s := stringField(k); s != "" {
				c.Keywords = append(c.Keywords, s)
			}
		}
	}
	if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
		return Candidate{}, false
	}
	return c, true
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// parseLabeledLines reads "Q: ... / A: ..." style output. A numbered line
// or a Q label starts a question, a line carrying an inline "A:" is a
// complete pair, an A label or any other following line extends the answer,
// and a bare line ending in "?" starts a question when none is open.
func parseLabeledLines(s string) []Candidate {
	var (
		out      []Candidate
		question string
		open     bool
		answer   []string
	)
	flush := func() {
		if open && len(answer) > 0 {
			out = append(out, Candidate{
				Question: strings.TrimSpace(question),
				Answer:   strings.TrimSpace(strings.Join(answer, " ")),
			})
		}
		question, open, answer = "", false, nil
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if loc := questionTag.FindStringIndex(line); loc != nil {
			flush()
			body := line[loc[1]:]
			if q, a, ok := splitInline(body); ok {
				out = append(out, Candidate{Question: q, Answer: a})
				continue
			}
			question, open = body, true
			continue
		}
		if loc := numbered.FindStringIndex(line); loc != nil {
			flush()
			body := line[loc[1]:]
			if q, a, ok := splitInline(body); ok {
				out = append(out, Candidate{Question: q, Answer: a})
				continue
			}
			question, open = body, true
			continue
		}
		if loc := answerTag.FindStringIndex(line); loc != nil {
			if rest := strings.TrimSpace(line[loc[1]:]); open && rest != "" {
				answer = append(answer, rest)
			}
			continue
		}
		if q, a, ok := splitInline(line); ok {
			flush()
			out = append(out, Candidate{Question: q, Answer: a})
			continue
		}
		if open {
			answer = append(answer, line)
			continue
		}
		if strings.HasSuffix(line, "?") {
			question, open = line, true
		}
	}
	flush()
	return out
}

func splitInline(line string) (string, string, bool) {
	loc := inlineSplit.FindStringIndex(line)
	if loc == nil || loc[0] == 0 {
		return "", "", false
	}
	q := strings.TrimSpace(line[:loc[0]])
	a := strings.TrimSpace(line[loc[1]:])
	if q == "" || a == "" {
		return "", "", false
	}
	return q, a, true
}

// parseAlternating pairs consecutive blank-line separated blocks: a block
// is taken as a question when it ends in "?" or is short and followed by a
// longer block.
func parseAlternating(s string) []Candidate {
	var parts []string
	for _, p := range blankLines.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	var out []Candidate
	for i := 0; i+1 < len(parts); {
		q, a := parts[i], parts[i+1]
		ql := utf8.RuneCountInString(q)
		if strings.HasSuffix(q, "?") || (ql < 120 && utf8.RuneCountInString(a) > ql) {
			out = append(out, Candidate{Question: q, Answer: a})
			i += 2
			continue
		}
		i++
	}
	return out
}
