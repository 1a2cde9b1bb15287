package scraper

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// embedText holds the raw text fields of an embed page. Empty fields were
// not found in the markup.
type embedText struct {
	Author  string
	Caption string
}

// parseEmbedText extracts the author and raw caption from embed page markup.
// Line breaks and block boundaries inside the caption become newlines.
func parseEmbedText(markup string, sel Selectors) embedText {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil || root == nil {
		return embedText{}
	}

	var out embedText
	if n := findByClass(root, sel.UsernameClass); n != nil {
		out.Author = strings.Join(strings.Fields(textOf(n)), " ")
	}
	if n := findByClass(root, sel.CaptionClass); n != nil {
		out.Caption = strings.TrimSpace(textOf(n))
	}
	return out
}

// findByClass returns the first element in document order whose class list
// contains class.
func findByClass(n *html.Node, class string) *html.Node {
	if class == "" {
		return nil
	}
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, name := range strings.Fields(attr.Val) {
			if name == class {
				return true
			}
		}
	}
	return false
}

// textOf renders the visible text below n, approximating innerText.
func textOf(n *html.Node) string {
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.Data)
	if block {
		newline(b)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if block {
		newline(b)
	}
}

// collapseSpace folds whitespace runs, including source newlines, into a
// single space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// newline starts a new line unless the text already ends with one.
func newline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "div", "p", "li", "ul", "ol", "section", "article", "header", "footer",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "table", "tr":
		return true
	}
	return false
}
