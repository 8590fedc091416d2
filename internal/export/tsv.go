package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

// WriteTSV writes cards in Anki's tab-separated import format with the
// question, the answer and space-separated tags on each line.
func WriteTSV(w io.Writer, cards []flashcard.Flashcard) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#separator:tab\n#html:true\n#tags column:3\n")
	for _, c := range cards {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", tsvField(c.Question), tsvField(c.Answer), strings.Join(Tags(c.Keywords), " "))
	}
	return bw.Flush()
}

// tsvField escapes s for an HTML-enabled Anki field on a single line.
func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", " ")
	s = html.EscapeString(s)
	return strings.ReplaceAll(s, "\n", "<br>")
}
