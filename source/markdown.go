package source

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/docforge/model"
)

// ParseMarkdown maps Markdown onto a document. The first level-1 heading
// is the title; every later heading opens a section. A "By ..." paragraph
// before the first section sets the author.
func ParseMarkdown(source []byte) model.Document {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	b := &docBuilder{}
	walkMarkdown(b, root, source)
	return b.finish()
}

func walkMarkdown(b *docBuilder, node ast.Node, source []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			if n.Level == 1 && b.doc.Title == "" {
				b.setTitle(inlineText(n, source))
			} else {
				b.openSection(inlineText(n, source))
			}
		case *ast.Paragraph:
			for _, kw := range images(n, source) {
				b.addImage(kw)
			}
			b.addParagraph(inlineText(n, source))
		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				b.addBullet(inlineText(item, source))
			}
		case *ast.Blockquote:
			walkMarkdown(b, n, source)
		}
	}
}

// inlineText concatenates the text below n. Soft line breaks become spaces
// and hard breaks become newlines; image alt text is dropped.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			switch {
			case t.HardLineBreak():
				sb.WriteByte('\n')
			case t.SoftLineBreak():
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.Paragraph, *ast.TextBlock:
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func images(n ast.Node, source []byte) []string {
	var out []string
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := node.(*ast.Image); ok && entering {
			var alt strings.Builder
			for c := img.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					alt.Write(t.Segment.Value(source))
				}
			}
			out = append(out, imageKeyword(alt.String(), string(img.Destination)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}
