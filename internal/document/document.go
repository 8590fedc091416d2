package document

// Paragraph is a unit of extracted text.
type Paragraph struct {
	Text string
	Page *int // Source page, nil for formats without pages.
}

// HeadingEntry attributes a heading to the paragraph at Index.
type HeadingEntry struct {
	Index   int
	Heading *string // Nearest preceding heading, nil before the first one.
}

// Chunk is a bounded span of cleaned text, ready for flashcard generation.
type Chunk struct {
	ID        int     `json:"chunk_id"`
	Text      string  `json:"text"`
	Heading   *string `json:"heading"`
	PageStart *int    `json:"page_start"`
	PageEnd   *int    `json:"page_end"`
}

// PageOf returns a pointer to n, for building paragraphs from page-oriented sources.
func PageOf(n int) *int {
	return &n
}

// HeadingOf returns a pointer to s.
func HeadingOf(s string) *string {
	return &s
}
