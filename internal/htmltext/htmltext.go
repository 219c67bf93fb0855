// Package htmltext salvages readable text from model responses that came
// back as HTML markup instead of Markdown.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// IsHTML reports whether s looks like an HTML document or fragment rather
// than plain Markdown. It checks for a handful of structural tags instead of
// trying to fully sniff the content.
func IsHTML(s string) bool {
	low := strings.ToLower(s)
	for _, marker := range []string{"<!doctype html", "<html", "<body", "<div", "<p>", "<table"} {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// Salvage extracts readable text from HTML, preferring <main> or <article>
// and falling back to <body> or the whole tree. Headings, paragraphs, and
// list items keep their line structure; script, style, and nav content is
// dropped.
func Salvage(input string) string {
	node, err := html.Parse(strings.NewReader(input))
	if err != nil || node == nil {
		return strings.TrimSpace(input)
	}

	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		content = node
	}

	var b strings.Builder
	collectText(&b, content, false)
	return tidyLines(b.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "nav", "footer", "iframe", "head":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "ul", "ol":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li", "tr":
			b.WriteString("\n")
		case "pre", "code":
			b.WriteString("\n")
		}
	}
}

// tidyLines trims lines, collapses internal space runs, and keeps at most
// one consecutive blank line.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, strings.Join(strings.Fields(trimmed), " "))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
