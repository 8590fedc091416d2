package flashcard

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeywords is the number of keywords attached by Enrich.
const DefaultKeywords = 5

var keywordToken = regexp.MustCompile(`\b[a-z]{4,}\b`)

var stopwords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"which": true, "their": true, "there": true, "were": true, "been": true,
	"they": true, "these": true, "those": true, "into": true, "also": true,
	"such": true, "than": true, "then": true, "when": true, "where": true,
	"what": true, "will": true, "would": true, "could": true, "should": true,
	"about": true, "other": true, "more": true, "most": true, "some": true,
	"each": true, "only": true, "over": true, "very": true, "your": true,
	"does": true, "important": true, "know": true, "main": true, "idea": true,
	"expressed": true, "statement": true,
}

// Keywords returns up to n of the most frequent words of four or more
// letters in text, ignoring common stopwords. Ties keep first-seen order.
func Keywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	counts := map[string]int{}
	var order []string
	for _, w := range keywordToken.FindAllString(strings.ToLower(text), -1) {
		if stopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Enrich fills in keywords for cards that have none, drawing them from the
// answer text. Confidence is left as scored.
func Enrich(cards []Flashcard, n int) {
	for i := range cards {
		if len(cards[i].Keywords) > 0 {
			continue
		}
		cards[i].Keywords = Keywords(cards[i].Answer, n)
	}
}
