// Package textclean turns raw HTML into plain, whitespace-collapsed text.
package textclean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
)

// noiseSelector lists elements whose content is never article text.
const noiseSelector = "script, style, noscript"

// Clean strips script/style/noscript content from raw HTML and returns the
// remaining text with a single space between fragments. It never fails:
// unparseable markup falls back to a plain tag strip.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CollapseSpace(tagRe.ReplaceAllString(raw, " "))
	}
	return FromDocument(doc)
}

// FromDocument extracts cleaned text from an already parsed document.
// The document is modified: noise elements are removed from it.
func FromDocument(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return CollapseSpace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// CollapseSpace replaces every whitespace run with one space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
