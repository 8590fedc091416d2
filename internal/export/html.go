package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

const sheetStyle = `body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;color:#222}
.card{border:1px solid #ddd;border-radius:6px;padding:1rem;margin:1rem 0}
.question{font-size:1.1rem;margin:0 0 .5rem}
details summary{cursor:pointer;color:#555}
.meta{font-size:.8rem;color:#777;margin:.5rem 0 0}`

// WriteHTML writes a standalone study sheet. Answers are rendered from
// Markdown with raw HTML suppressed; each answer is folded under its
// question.
func WriteHTML(w io.Writer, title string, cards []flashcard.Flashcard) error {
	md := goldmark.New()

	head := element("head")
	head.AppendChild(element("meta", "charset", "utf-8"))
	head.AppendChild(withText(element("title"), title))
	head.AppendChild(withText(element("style"), sheetStyle))

	body := element("body")
	body.AppendChild(withText(element("h1"), title))
	body.AppendChild(withText(element("p", "class", "summary"), cardCount(len(cards))))

	list := element("ol", "class", "cards")
	for i, c := range cards {
		answer, err := renderMarkdown(md, c.Answer)
		if err != nil {
			return fmt.Errorf("render answer %d: %w", i, err)
		}

		item := element("li", "class", "card")
		item.AppendChild(withText(element("h2", "class", "question"), c.Question))

		details := element("details")
		details.AppendChild(withText(element("summary"), "Show answer"))
		div := element("div", "class", "answer")
		for _, n := range answer {
			div.AppendChild(n)
		}
		details.AppendChild(div)
		item.AppendChild(details)

		item.AppendChild(withText(element("p", "class", "meta"), cardMeta(c)))
		list.AppendChild(item)
	}
	body.AppendChild(list)

	root := element("html", "lang", "en")
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	return html.Render(w, doc)
}

func renderMarkdown(md goldmark.Markdown, src string) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return nil, err
	}
	return html.ParseFragment(&buf, &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func cardCount(n int) string {
	if n == 1 {
		return "1 card"
	}
	return strconv.Itoa(n) + " cards"
}

func cardMeta(c flashcard.Flashcard) string {
	meta := "confidence " + strconv.FormatFloat(c.Confidence, 'f', 2, 64)
	if len(c.Keywords) > 0 {
		meta += " | keywords: " + strings.Join(c.Keywords, ", ")
	}
	return meta
}
