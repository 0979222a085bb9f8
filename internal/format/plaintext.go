// Package format prepares generated drafts for delivery: markup removal and
// RFC 822 message composition.
package format

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// PlainText converts an HTML draft to plain text. Text without markup is
// returned unchanged.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil || !hasMarkup(doc) {
		return s
	}

	var b strings.Builder
	renderText(doc, &b)

	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(l, " "))
	}
	out := strings.Join(lines, "\n")

	return strings.TrimSpace(blankLines.ReplaceAllString(out, "\n\n"))
}

// hasMarkup reports whether the parsed document has elements beyond the
// html/head/body skeleton the parser always adds.
func hasMarkup(n *html.Node) bool {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "html", "head", "body":
		default:
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasMarkup(c) {
			return true
		}
	}
	return false
}

func renderText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "title":
			return
		case "br":
			b.WriteString("\n")
			return
		case "li":
			b.WriteString("\n- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(c, b)
	}

	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "table", "ul", "ol":
		b.WriteString("\n\n")
	case "tr":
		b.WriteString("\n")
	case "td", "th":
		b.WriteString(" ")
	case "a":
		href := strings.TrimPrefix(attr(n, "href"), "mailto:")
		if href != "" && href != textOf(n) && !strings.HasPrefix(href, "#") {
			b.WriteString(" (" + href + ")")
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
