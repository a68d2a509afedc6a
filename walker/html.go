package walker

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skipped elements never contribute text.
var skipped = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// block elements start and end a line.
var block = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// ExtractHTML returns the visible text of an HTML document, one line per block
// element, with runs of whitespace collapsed to a single space.
func ExtractHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var lines []string
	var line []string
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = line[:0]
		}
	}

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
			if block[n.Data] {
				flush()
				defer flush()
			}
		case html.TextNode:
			line = append(line, strings.Fields(n.Data)...)
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}
