package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultCleanLength bounds the output of CleanHTML when no limit is given.
const DefaultCleanLength = 50000

// CleanedPage is a page reduced to the markup useful for locating elements.
type CleanedPage struct {
	Title       string
	Description string
	HTML        string
	Truncated   bool
}

var (
	droppedTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true,
		"iframe": true, "embed": true, "object": true, "svg": true, "canvas": true,
	}

	blockTags = map[string]bool{
		"html": true, "head": true, "body": true,
		"div": true, "p": true, "section": true, "article": true, "main": true,
		"header": true, "footer": true, "nav": true, "aside": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
		"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
		"form": true, "fieldset": true, "blockquote": true, "pre": true, "dialog": true,
	}

	voidTags = map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"param": true, "source": true, "track": true, "wbr": true,
	}

	// Attributes a selector is most likely to be written against.
	keptAttributes = map[string]bool{
		"id": true, "class": true, "name": true, "type": true, "role": true,
		"href": true, "src": true, "alt": true, "title": true, "value": true,
		"placeholder": true, "for": true, "action": true, "method": true,
		"aria-label": true, "aria-labelledby": true, "aria-describedby": true,
		"content": true, "checked": true, "disabled": true,
	}
)

// CleanHTML strips scripts, styles and presentation attributes from raw
// markup, keeping structure and the attributes selectors are built from.
// Output stops growing once maxLength bytes have been written.
func CleanHTML(raw string, maxLength int) (*CleanedPage, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if maxLength <= 0 {
		maxLength = DefaultCleanLength
	}

	c := &cleaner{limit: maxLength}
	c.walk(doc, 0)

	return &CleanedPage{
		Title:       findTitle(doc),
		Description: findMetaContent(doc, "description"),
		HTML:        strings.TrimSpace(c.out.String()),
		Truncated:   c.full,
	}, nil
}

// VisibleText returns the text a reader would see, one block per line.
func VisibleText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var lines []string
	var line strings.Builder

	flush := func() {
		if text := strings.Join(strings.Fields(line.String()), " "); text != "" {
			lines = append(lines, text)
		}
		line.Reset()
	}

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if droppedTags[tag] || tag == "head" {
				return
			}
			if blockTags[tag] || tag == "br" {
				flush()
			}
		case html.TextNode:
			line.WriteString(n.Data)
			line.WriteByte(' ')
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}

		if n.Type == html.ElementNode && blockTags[strings.ToLower(n.Data)] {
			flush()
		}
	}
	visit(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}

type cleaner struct {
	out   strings.Builder
	limit int
	full  bool
}

func (c *cleaner) write(s string) {
	if c.full {
		return
	}
	if remaining := c.limit - c.out.Len(); len(s) > remaining {
		// cut on a rune boundary
		for remaining > 0 && !utf8.RuneStart(s[remaining]) {
			remaining--
		}
		c.out.WriteString(s[:remaining])
		c.out.WriteString("...")
		c.full = true
		return
	}
	c.out.WriteString(s)
}

func (c *cleaner) walk(n *html.Node, depth int) {
	if c.full {
		return
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return

	case html.TextNode:
		if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
			c.write(html.EscapeString(text))
		}
		return

	case html.ElementNode:
		c.element(n, depth)
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, depth)
	}
}

func (c *cleaner) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if droppedTags[tag] {
		return
	}

	block := blockTags[tag]
	indent := "\n" + strings.Repeat("  ", depth)
	if block && depth > 0 {
		c.write(indent)
	}

	var open strings.Builder
	open.WriteString("<" + tag)
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if keptAttributes[key] || strings.HasPrefix(key, "data-") {
			fmt.Fprintf(&open, ` %s="%s"`, key, html.EscapeString(attr.Val))
		}
	}
	open.WriteString(">")
	c.write(open.String())

	if voidTags[tag] {
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, depth+1)
	}

	if block {
		c.write(indent)
	}
	c.write("</" + tag + ">")
}

func findTitle(doc *html.Node) string {
	node := findElement(doc, func(n *html.Node) bool { return n.Data == "title" })
	if node == nil || node.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}

// findMetaContent returns the content of <meta name="name">.
func findMetaContent(doc *html.Node, name string) string {
	node := findElement(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attrValue(n, "name") == name
	})
	if node == nil {
		return ""
	}
	return strings.TrimSpace(attrValue(node, "content"))
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, match); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
