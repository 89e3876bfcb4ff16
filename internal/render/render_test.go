package render

import (
	"context"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	"inkpress/internal/i18n"
	"inkpress/internal/toc"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMarkdownRenderer_Headings(t *testing.T) {
	src := []byte("# Title\n\n## Hello *World*\n\ntext\n\n### With `code`\n\n## Second\n")
	res, err := NewMarkdownRenderer().Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := []toc.Heading{
		{Depth: 1, Text: "Title", Slug: "title"},
		{Depth: 2, Text: "Hello World", Slug: "hello-world"},
		{Depth: 3, Text: "With code", Slug: "with-code"},
		{Depth: 2, Text: "Second", Slug: "second"},
	}
	if !reflect.DeepEqual(res.Headings, want) {
		t.Errorf("expected %+v, got %+v", want, res.Headings)
	}
	if !strings.Contains(string(res.HTML), `<h2 id="hello-world">`) {
		t.Errorf("expected heading id in HTML, got %s", res.HTML)
	}
}

func TestMarkdownRenderer_HighlightsCode(t *testing.T) {
	src := []byte("```go\nfunc main() {}\n```\n")
	res, err := NewMarkdownRenderer().Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(res.HTML)
	if !strings.Contains(out, `class="chroma"`) || !strings.Contains(out, `class="kd"`) {
		t.Errorf("expected highlighted code, got %s", out)
	}
}

func TestMarkdownRenderer_NoHeadings(t *testing.T) {
	res, err := NewMarkdownRenderer().Render([]byte("just text"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Headings) != 0 {
		t.Errorf("expected no headings, got %+v", res.Headings)
	}
}

func TestHighlightCSS(t *testing.T) {
	css, err := HighlightCSS()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(css), ".chroma") {
		t.Errorf("expected chroma rules, got %s", css)
	}
}

func TestNewPostPage_TOC(t *testing.T) {
	meta := content.ArticleMeta{
		Slug: "p",
		Headings: []toc.Heading{
			{Depth: 1, Text: "Title"},
			{Depth: 2, Text: "A"},
			{Depth: 3, Text: "A.1"},
			{Depth: 5, Text: "too deep"},
			{Depth: 2, Text: "B"},
		},
	}
	page := NewPostPage(Common{Lang: "en"}, meta, []byte("<p>x</p>"), config.TOCConfig{MinDepth: 2, MaxDepth: 4, MinHeadings: 3})

	if !page.ShowTOC {
		t.Error("expected TOC to be shown")
	}
	if len(page.TOC) != 2 || page.TOC[0].Text != "A" || len(page.TOC[0].Subheadings) != 1 {
		t.Fatalf("unexpected TOC %+v", page.TOC)
	}
	if want := map[int]int{1: 1, 2: 2, 3: 1}; !reflect.DeepEqual(page.TOCLevels, want) {
		t.Errorf("expected levels %v, got %v", want, page.TOCLevels)
	}
	if page.TOCCount != 3 {
		t.Errorf("expected 3 outline nodes, got %d", page.TOCCount)
	}

	few := NewPostPage(Common{}, content.ArticleMeta{Headings: meta.Headings[:2]}, nil, config.TOCConfig{MinDepth: 2, MaxDepth: 4, MinHeadings: 3})
	if few.ShowTOC {
		t.Error("expected TOC hidden below the heading threshold")
	}

	// min_headings: 0 是合法配置，有标题就显示
	single := NewPostPage(Common{}, content.ArticleMeta{Headings: meta.Headings[1:2]}, nil, config.TOCConfig{MinDepth: 2, MaxDepth: 4, MinHeadings: 0})
	if !single.ShowTOC || single.TOCCount != 1 {
		t.Errorf("expected single heading outline with zero threshold, got show=%v count=%d", single.ShowTOC, single.TOCCount)
	}
	none := NewPostPage(Common{}, content.ArticleMeta{}, nil, config.TOCConfig{MinDepth: 2, MaxDepth: 4, MinHeadings: 0})
	if none.ShowTOC {
		t.Error("expected no TOC without headings")
	}
}

func writeTheme(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testLocales(t *testing.T) *i18n.Locales {
	t.Helper()
	cfg := config.Default()
	cfg.I18n.Locales = []string{"en", "zh-CN"}
	l, err := i18n.NewLocales(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestTemplateRenderer_Post(t *testing.T) {
	dir := writeTheme(t, map[string]string{
		"post.tmpl": `{{.Title}}|{{postURL .Meta}}|{{url .Lang "/tags/go"}}|{{t .Lang "read_more"}}|{{date .Meta.Date "2006-01-02"}}|{{if .ShowTOC}}{{range .TOC}}[{{.Text}}]{{end}}{{end}}|{{nowYear}}|{{upper .Meta.Slug}}`,
	})
	cat := i18n.NewCatalog("en")
	cat.Add("zh-CN", map[string]string{"read_more": "阅读更多"})

	r, err := NewTemplateRenderer(TemplateOptions{
		Dir:     dir,
		Locales: testLocales(t),
		Catalog: cat,
		Now:     func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error = %v", err)
	}

	meta := content.ArticleMeta{Slug: "hello", Lang: "zh-CN", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	page := PostPage{
		Common:  Common{Lang: "zh-CN", Title: "Hello"},
		Meta:    meta,
		TOC:     []*toc.Node{{Depth: 2, Text: "One"}},
		ShowTOC: true,
	}
	out, err := r.RenderPost(context.Background(), page)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	want := "Hello|/zh-CN/post/2024/01/02/hello/|/zh-CN/tags/go/|阅读更多|2024-01-02|[One]|2030|HELLO"
	if string(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	if _, err := r.RenderHome(context.Background(), HomePage{}); err == nil {
		t.Error("expected error for missing home template")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPost(ctx, page); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestCheckThemeTemplates(t *testing.T) {
	files := make(map[string]string, len(requiredTemplates))
	for _, name := range requiredTemplates {
		files[name] = "x"
	}
	if err := CheckThemeTemplates(writeTheme(t, files)); err != nil {
		t.Errorf("expected complete theme, got %v", err)
	}

	delete(files, "post.tmpl")
	delete(files, "404.tmpl")
	err := CheckThemeTemplates(writeTheme(t, files))
	if err == nil {
		t.Fatal("expected missing templates")
	}
	if !strings.Contains(err.Error(), "post.tmpl") || !strings.Contains(err.Error(), "404.tmpl") {
		t.Errorf("expected both missing templates reported, got %v", err)
	}
}
