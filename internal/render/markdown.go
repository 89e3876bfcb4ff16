package render

import (
	"bytes"
	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"inkpress/internal/toc"
	"strings"
)

// HighlightStyle is the chroma style behind HighlightCSS.
const HighlightStyle = "github"

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(newCodeRenderer(), 100)),
		),
	)
	return &MarkdownRenderer{md: md}
}

type MarkdownResult struct {
	HTML     []byte
	Headings []toc.Heading
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var heads []toc.Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var idStr string
		if id, ok := h.AttributeString("id"); ok {
			switch v := id.(type) {
			case string:
				idStr = v
			case []byte:
				idStr = string(v)
			}
		}
		heads = append(heads, toc.Heading{
			Depth: h.Level,
			Text:  strings.TrimSpace(inlineText(h, src)),
			Slug:  idStr,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return MarkdownResult{}, err
	}

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     buf.Bytes(),
		Headings: heads,
	}, nil
}

// inlineText 拼接所有行内子节点的纯文本，包括强调、链接和行内代码
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

type codeRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newCodeRenderer() *codeRenderer {
	return &codeRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     highlightStyle(),
	}
}

func highlightStyle() *chroma.Style {
	if s := styles.Get(HighlightStyle); s != nil {
		return s
	}
	return styles.Fallback
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lang := string(n.Language(source))
	l := lexers.Get(lang)
	if l == nil && lang == "" {
		l = lexers.Analyse(code.String())
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	it, err := l.Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}
	if err := r.formatter.Format(w, r.style, it); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// HighlightCSS is the stylesheet for the classes emitted around code blocks.
func HighlightCSS() ([]byte, error) {
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, highlightStyle()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
