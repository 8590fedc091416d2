package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/flashgest/internal/document"
)

const (
	separator    = "\n\n"
	separatorLen = 2

	// shortParagraph is the length under which a paragraph is joined with a
	// following paragraph that continues it in lowercase.
	shortParagraph = 150

	trimSet = " \n\t-:;,.()[]{}"
)

// Config controls chunking behavior.
type Config struct {
	MaxChunkChars int  // Character budget per chunk.
	OverlapChars  int  // Trailing characters of a chunk that seed the next; 0 disables overlap.
	NoMerge       bool // Skip joining short paragraphs with their lowercase continuation.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars: 2000,
		OverlapChars:  200,
	}
}

// NoContentError reports that no non-empty paragraph was available to chunk.
type NoContentError struct{}

func (e *NoContentError) Error() string {
	return "no content to chunk after cleaning"
}

type unit struct {
	text    string
	page    *int
	heading *string
}

// Chunk packs cleaned paragraphs into overlapping chunks of at most
// MaxChunkChars characters. A single paragraph longer than the budget becomes
// its own chunk. headings is indexed like paras and may be nil.
func Chunk(paras []document.Paragraph, headings []document.HeadingEntry, cfg Config) ([]document.Chunk, error) {
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 2000
	}
	if cfg.OverlapChars < 0 {
		cfg.OverlapChars = 0
	}

	units := collect(paras, headings, !cfg.NoMerge)
	if len(units) == 0 {
		return nil, &NoContentError{}
	}

	b := &builder{cfg: cfg}
	for _, u := range units {
		b.add(u)
	}
	b.flush()

	if len(b.chunks) == 0 {
		return nil, &NoContentError{}
	}
	return b.chunks, nil
}

// collect drops empty paragraphs, attaches headings and optionally joins a
// short paragraph with a following paragraph that starts in lowercase.
func collect(paras []document.Paragraph, headings []document.HeadingEntry, merge bool) []unit {
	headingAt := func(i int) *string {
		if i < len(headings) {
			return headings[i].Heading
		}
		return nil
	}

	units := make([]unit, 0, len(paras))
	for i := 0; i < len(paras); i++ {
		text := strings.TrimSpace(paras[i].Text)
		if text == "" {
			continue
		}
		u := unit{text: text, page: paras[i].Page, heading: headingAt(i)}

		if merge && Length(text) < shortParagraph && i+1 < len(paras) {
			next := strings.TrimSpace(paras[i+1].Text)
			if startsLower(next) {
				u.text = text + " " + next
				if u.page == nil {
					u.page = paras[i+1].Page
				}
				i++
			}
		}
		units = append(units, u)
	}
	return units
}

type builder struct {
	cfg    Config
	chunks []document.Chunk

	seed  string   // overlap carried from the previous chunk
	parts []string // paragraphs added since the last flush
	size  int      // length of seed and parts joined with separators

	heading   *string
	pageStart *int
	pageEnd   *int
}

func (b *builder) add(u unit) {
	n := Length(u.text)
	if len(b.parts) > 0 && b.size+separatorLen+n > b.cfg.MaxChunkChars {
		b.flush()
	}

	if len(b.parts) == 0 {
		// Never let the overlap push the first paragraph over budget.
		if b.seed != "" && Length(b.seed)+separatorLen+n > b.cfg.MaxChunkChars {
			b.seed = tail(b.seed, b.cfg.MaxChunkChars-separatorLen-n)
		}
		b.size = Length(b.seed)
		b.heading = u.heading
	}

	if b.size > 0 {
		b.size += separatorLen
	}
	b.size += n
	b.parts = append(b.parts, u.text)

	if u.page != nil {
		if b.pageStart == nil {
			b.pageStart = u.page
		}
		b.pageEnd = u.page
	}
}

// flush emits the buffered paragraphs as a chunk. A buffer holding only the
// overlap seed is never emitted.
func (b *builder) flush() {
	if len(b.parts) == 0 {
		return
	}

	all := b.parts
	if b.seed != "" {
		all = append([]string{b.seed}, b.parts...)
	}
	text := strings.Trim(strings.Join(all, separator), trimSet)

	if text != "" {
		b.chunks = append(b.chunks, document.Chunk{
			ID:        len(b.chunks),
			Text:      text,
			Heading:   b.heading,
			PageStart: b.pageStart,
			PageEnd:   b.pageEnd,
		})
		b.seed = tail(text, b.cfg.OverlapChars)
	}

	b.parts = nil
	b.size = 0
	b.heading = nil
	b.pageStart = nil
	b.pageEnd = nil
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
