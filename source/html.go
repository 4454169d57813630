package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docforge/model"
)

// ParseHTML maps an HTML page onto a document. The title comes from the
// first h1, falling back to <title>; h2 through h6 (and later h1s) open
// sections; <meta name="author"> sets the author and the root lang
// attribute sets the language.
func ParseHTML(r io.Reader) (model.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return model.Document{}, fmt.Errorf("parse html: %w", err)
	}
	b := &docBuilder{}
	var pageTitle string
	walkHTML(b, root, &pageTitle)
	doc := b.finish()
	if doc.Title == "" {
		doc.Title = pageTitle
	}
	return doc, nil
}

func walkHTML(b *docBuilder, n *html.Node, pageTitle *string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Html:
			if lang := attr(n, "lang"); lang != "" && b.doc.Language == "" {
				b.doc.Language = LanguageName(lang)
			}
		case atom.Title:
			*pageTitle = extractText(n)
			return
		case atom.Meta:
			if strings.EqualFold(attr(n, "name"), "author") && b.doc.Author == "" {
				b.doc.Author = strings.TrimSpace(attr(n, "content"))
			}
			return
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.H1:
			if b.doc.Title == "" {
				b.setTitle(extractText(n))
			} else {
				b.openSection(extractText(n))
			}
			return
		case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			b.openSection(extractText(n))
			return
		case atom.P:
			for _, kw := range htmlImages(n) {
				b.addImage(kw)
			}
			b.addParagraph(paragraphText(n))
			return
		case atom.Li:
			b.addBullet(extractText(n))
			return
		case atom.Img:
			b.addImage(imageKeyword(attr(n, "alt"), attr(n, "src")))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(b, c, pageTitle)
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

// extractText collapses the text below n into single-spaced words.
func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// paragraphText is extractText that keeps <br> as a newline.
func paragraphText(n *html.Node) string {
	var lines []string
	var cur strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			lines = append(lines, strings.Join(strings.Fields(cur.String()), " "))
			cur.Reset()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	lines = append(lines, strings.Join(strings.Fields(cur.String()), " "))
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func htmlImages(n *html.Node) []string {
	var out []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			out = append(out, imageKeyword(attr(n, "alt"), attr(n, "src")))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return out
}
