// Package flashcard turns raw generator output into validated question and
// answer pairs with a heuristic confidence score.
package flashcard

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxAnswerChars bounds the length of a validated answer.
const MaxAnswerChars = 4000

// Candidate is an unvalidated question and answer pair.
type Candidate struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Flashcard is a validated candidate with a confidence in [0, 1].
type Flashcard struct {
	Candidate
	Confidence float64 `json:"confidence"`
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	pageFragment  = regexp.MustCompile(`(?i)page\s+\d+`)
	whatIs        = regexp.MustCompile(`^what is\b`)
)

// Validate normalizes candidates, drops incomplete ones and duplicates,
// and scores the rest. Order is preserved.
func Validate(cands []Candidate) []Flashcard {
	out := make([]Flashcard, 0, len(cands))
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		q := normalize(c.Question)
		a := normalize(c.Answer)
		if q == "" || a == "" {
			continue
		}
		a = normalize(pageFragment.ReplaceAllString(a, ""))
		a = truncate(a, MaxAnswerChars)
		if a == "" {
			continue
		}

		key := Key(q, a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		kw := cleanKeywords(c.Keywords)
		out = append(out, Flashcard{
			Candidate:  Candidate{Question: q, Answer: a, Keywords: kw},
			Confidence: Score(q, a, kw),
		})
	}
	return out
}

// Key identifies a card for case-insensitive deduplication.
func Key(question, answer string) string {
	return strings.ToLower(question) + "\x00" + strings.ToLower(answer)
}

// Score rates a card: 0.5 to start, +0.2 with keywords, +0.2 for an answer
// of 50 to 800 characters, -0.1 for a question opening "what is" and +0.05
// otherwise. The result is rounded to three decimals and clamped to [0, 1].
func Score(question, answer string, keywords []string) float64 {
	score := 0.5
	if len(keywords) > 0 {
		score += 0.2
	}
	if n := utf8.RuneCountInString(answer); n >= 50 && n <= 800 {
		score += 0.2
	}
	if whatIs.MatchString(strings.ToLower(question)) {
		score -= 0.1
	} else {
		score += 0.05
	}
	score = math.Round(score*1000) / 1000
	return math.Max(0, math.Min(1, score))
}

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}

func cleanKeywords(kw []string) []string {
	if len(kw) == 0 {
		return nil
	}
	out := make([]string, 0, len(kw))
	for _, k := range kw {
		if k = normalize(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
