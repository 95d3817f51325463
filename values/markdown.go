package values

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"push_to_gdoc/filler"
)

func parseMarkdown(src []byte) ast.Node {
	return goldmark.DefaultParser().Parse(text.NewReader(src))
}

// ParseInline returns a Link when s is exactly one Markdown link such as
// "[docs](https://example.com)", and s unchanged as Text otherwise.
func ParseInline(s string) filler.Value {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, ")") {
		return filler.Text(s)
	}
	src := []byte(trimmed)
	doc := parseMarkdown(src)
	p, ok := doc.FirstChild().(*ast.Paragraph)
	if !ok || doc.ChildCount() != 1 || p.ChildCount() != 1 {
		return filler.Text(s)
	}
	link, ok := p.FirstChild().(*ast.Link)
	if !ok {
		return filler.Text(s)
	}
	return filler.Link{URL: string(link.Destination), Text: plainText(link, src)}
}

// Markdown flattens Markdown to the plain text a reader would see:
// emphasis and link syntax are dropped, blocks are separated by newlines
// and list items keep a bullet.
func Markdown(md string) filler.Text {
	src := []byte(md)
	return filler.Text(strings.TrimSpace(plainText(parseMarkdown(src), src)))
}

func plainText(root ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n != root && n.NextSibling() != nil {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			switch {
			case n.HardLineBreak():
				b.WriteByte('\n')
			case n.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.AutoLink:
			b.Write(n.URL(src))
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			b.WriteString("• ")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
