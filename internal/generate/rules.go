package generate

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

var (
	sentenceEnd  = regexp.MustCompile(`[.!?]+`)
	wordToken    = regexp.MustCompile(`\b\w+\b`)
	definitional = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bis\s+(?:defined\s+as|called|known\s+as)\b`),
		regexp.MustCompile(`(?i)\bmeans\b`),
		regexp.MustCompile(`(?i)\brefers\s+to\b`),
		regexp.MustCompile(`(?i)\bconsists\s+of\b`),
	}
	termStopwords = map[string]bool{
		"that": true, "this": true, "with": true, "from": true, "have": true,
		"which": true, "their": true, "there": true, "these": true, "those": true,
		"they": true, "were": true, "been": true, "into": true, "also": true,
		"when": true, "where": true, "what": true, "will": true, "about": true,
	}
)

// Rules writes flashcards without a model. Definitional sentences ("X is
// defined as Y", "X means Y") become "What is X?" cards; remaining sentences
// become cards about their first key term.
type Rules struct{}

func (Rules) Name() string { return "rule-based" }

func (Rules) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	if maxQuestions <= 0 {
		maxQuestions = 5
	}
	sentences := splitSentences(text)

	var out []flashcard.Candidate
	used := make(map[string]bool)
	for _, s := range sentences {
		if len(out) >= maxQuestions {
			return out, nil
		}
		term, def, ok := definition(s)
		if !ok {
			continue
		}
		used[s] = true
		out = append(out, flashcard.Candidate{
			Question: "What is " + term + "?",
			Answer:   def,
			Keywords: keyTerms(s),
		})
	}

	for _, s := range sentences {
		if len(out) >= maxQuestions {
			break
		}
		if used[s] {
			continue
		}
		terms := keyTerms(s)
		q := "What is the main idea expressed in this statement?"
		if len(terms) > 0 {
			q = "What is important to know about " + terms[0] + "?"
		}
		out = append(out, flashcard.Candidate{Question: q, Answer: s, Keywords: terms})
	}
	return out, nil
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceEnd.Split(text, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if utf8.RuneCountInString(s) > 20 {
			out = append(out, s)
		}
	}
	return out
}

func definition(sentence string) (string, string, bool) {
	for _, re := range definitional {
		loc := re.FindStringIndex(sentence)
		if loc == nil {
			continue
		}
		term := strings.TrimSpace(sentence[:loc[0]])
		def := strings.TrimSpace(sentence[loc[1]:])
		if term == "" || def == "" {
			return "", "", false
		}
		return term, def, true
	}
	return "", "", false
}

// keyTerms returns up to five distinct words longer than three letters in
// sentence order.
func keyTerms(sentence string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range wordToken.FindAllString(sentence, -1) {
		lw := strings.ToLower(w)
		if utf8.RuneCountInString(w) <= 3 || termStopwords[lw] || seen[lw] {
			continue
		}
		seen[lw] = true
		out = append(out, w)
		if len(out) == 5 {
			break
		}
	}
	return out
}
