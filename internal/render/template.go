package render

import (
	"bytes"
	"context"
	"fmt"
	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/multierr"
	"html/template"
	"inkpress/internal/domain/content"
	"inkpress/internal/domain/site"
	"inkpress/internal/i18n"
	"os"
	"path/filepath"
	"time"
)

// 主题必须提供的模板
var requiredTemplates = []string{
	"home.tmpl",
	"post.tmpl",
	"series.tmpl",
	"list.tmpl",
	"404.tmpl",
	"archives.tmpl",
	"tags-all.tmpl",
	"categories-all.tmpl",
}

type TemplateOptions struct {
	// 模板目录，例如 themes/default/templates
	Dir     string
	Locales *i18n.Locales
	Catalog *i18n.Catalog
	Now     func() time.Time
}

type TemplateRenderer struct {
	tpl *template.Template
}

func NewTemplateRenderer(opt TemplateOptions) (*TemplateRenderer, error) {
	if opt.Locales == nil {
		return nil, fmt.Errorf("render: missing locales")
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	pattern := filepath.Join(opt.Dir, "*.tmpl")
	tpl, err := template.New("").Funcs(templateFuncs(opt)).ParseGlob(pattern)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs(opt TemplateOptions) template.FuncMap {
	l := opt.Locales
	// sprig 打底，同名的 date/add/sub 用下面自己的
	funcs := sprig.FuncMap()
	for name, fn := range (template.FuncMap{
		"date": func(t interface{}, layout string) string {
			switch v := t.(type) {
			case nil:
				return ""
			case string:
				return v
			case time.Time:
				if v.IsZero() {
					return ""
				}
				return v.Format(layout)
			case interface{ Format(string) string }:
				return v.Format(layout)
			default:
				return ""
			}
		},
		"nowYear": func() int {
			return opt.Now().Year()
		},
		"postURL": func(m content.ArticleMeta) string {
			return l.Path(m.Lang, site.PostPath(m))
		},
		"url":      l.Path,
		"absURL":   l.URL,
		"langName": l.DisplayName,
		"t":        opt.Catalog.T,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
	}) {
		funcs[name] = fn
	}
	return funcs
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec(ctx, "home.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec(ctx, "post.tmpl", page)
}

func (r *TemplateRenderer) RenderSeries(ctx context.Context, page SeriesPage) ([]byte, error) {
	return r.exec(ctx, "series.tmpl", page)
}

func (r *TemplateRenderer) RenderList(ctx context.Context, page ListPage) ([]byte, error) {
	return r.exec(ctx, "list.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec(ctx, "404.tmpl", page)
}

func (r *TemplateRenderer) RenderArchives(ctx context.Context, page ArchivesPage) ([]byte, error) {
	return r.exec(ctx, "archives.tmpl", page)
}

func (r *TemplateRenderer) RenderTagsPage(ctx context.Context, page TagsPage) ([]byte, error) {
	return r.exec(ctx, "tags-all.tmpl", page)
}

func (r *TemplateRenderer) RenderCategoriesPage(ctx context.Context, page CategoriesPage) ([]byte, error) {
	return r.exec(ctx, "categories-all.tmpl", page)
}

func (r *TemplateRenderer) exec(ctx context.Context, name string, data interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckThemeTemplates reports every required template missing from dir.
func CheckThemeTemplates(dir string) error {
	var err error
	for _, name := range requiredTemplates {
		if _, statErr := os.Stat(filepath.Join(dir, name)); statErr != nil {
			err = multierr.Append(err, fmt.Errorf("missing template: %s", name))
		}
	}
	return err
}
