package generate

import (
	"fmt"
	"strings"
)

const FlashcardPrompt = `You are an experienced instructor preparing exam revision flashcards. Read the study material below and write at most %d flashcards that test understanding of its key facts, definitions and concepts.

Rules:
- Each question must be answerable from the material alone
- Answers are one to three sentences, self-contained and factually exact
- Prefer "why" and "how" questions over trivia when the material allows
- Do not refer to page numbers, slides, figures or "the text above"
- Do not repeat a question in different words
- "keywords" lists up to 5 lowercase terms central to the card
- Return an empty array [] if the material has nothing worth testing

Respond with ONLY a JSON array of objects with the fields "question", "answer" and "keywords", no other text.`

// BuildPrompt creates the full generation prompt for one chunk of text.
func BuildPrompt(text string, maxQuestions int) string {
	if maxQuestions <= 0 {
		maxQuestions = 6
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(FlashcardPrompt, maxQuestions))
	sb.WriteString("\n\n---\n")
	sb.WriteString(text)
	return sb.String()
}
