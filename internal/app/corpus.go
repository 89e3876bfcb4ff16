package app

import (
	"context"
	"fmt"
	"inkpress/internal/domain/content"
	"inkpress/internal/ingest"
	"inkpress/internal/render"
	"os"
)

// Corpus keeps the rendered article bodies of one build, keyed by
// content.ArticleMeta.Key.
type Corpus struct {
	articles map[string]content.Article
	html     map[string][]byte
}

// Prepare renders the Markdown body of every article and records its
// headings in the article meta, in place, so the index stores them.
func Prepare(ctx context.Context, md *render.MarkdownRenderer, arts []content.Article) (*Corpus, error) {
	c := &Corpus{
		articles: make(map[string]content.Article, len(arts)),
		html:     make(map[string][]byte, len(arts)),
	}
	for i := range arts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := &arts[i]
		src, err := os.ReadFile(a.Body.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("read post source(%s): %w", a.Body.SourcePath, err)
		}
		res, err := md.Render(ingest.StripFrontMatter(src))
		if err != nil {
			return nil, fmt.Errorf("markdown render(%s): %w", a.Body.SourcePath, err)
		}
		a.Meta.Headings = res.Headings

		key := a.Meta.Key()
		c.articles[key] = *a
		c.html[key] = res.HTML
	}
	return c, nil
}

func (c *Corpus) Article(lang, slug string) (content.Article, bool) {
	if c == nil {
		return content.Article{}, false
	}
	a, ok := c.articles[content.ArticleMeta{Lang: lang, Slug: slug}.Key()]
	return a, ok
}

func (c *Corpus) HTML(lang, slug string) []byte {
	if c == nil {
		return nil
	}
	return c.html[content.ArticleMeta{Lang: lang, Slug: slug}.Key()]
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.articles)
}
