package app

import (
	"context"
	"fmt"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	domainerr "inkpress/internal/domain/errors"
	"inkpress/internal/domain/site"
	"inkpress/internal/i18n"
	"inkpress/internal/index"
	"inkpress/internal/render"
	"inkpress/internal/taxonomy"
)

const (
	homePageSize = 20
	relatedCount = 5
)

// Pages assembles page views from the index and renders them. It is shared
// by the static build and the dev server.
type Pages struct {
	Cfg          config.Config
	Locales      *i18n.Locales
	Index        *index.Store
	Renderer     render.Renderer
	Corpus       *Corpus
	IncludeDraft bool
	// 非空时页面注入热重载脚本
	LiveReload string
}

// Page is a planned page: its view data and how to render it.
type Page struct {
	Route site.Route
	Data  interface{}
	exec  func(ctx context.Context) ([]byte, error)
}

func (p Page) Render(ctx context.Context) ([]byte, error) {
	return p.exec(ctx)
}

// Page builds the view of r. Unknown posts, tags, categories and series
// yield domainerr.ErrNotFound.
func (p *Pages) Page(ctx context.Context, r site.Route) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	switch r.Kind {
	case site.RouteIndex:
		return p.home(r)
	case site.RoutePost:
		return p.post(r, false)
	case site.RouteAbout, site.RouteLinks:
		return p.post(r, true)
	case site.RouteSeries:
		return p.series(r)
	case site.RouteTag, site.RouteCategory:
		return p.list(r)
	case site.RouteArchive:
		return p.archives(r)
	case site.RouteTags:
		return p.tags(r)
	case site.RouteCategories:
		return p.categories(r)
	case site.RouteNotFound:
		page := render.NotFoundPage{Common: p.common(r, "404"), Path: r.Path}
		return Page{Route: r, Data: page, exec: func(ctx context.Context) ([]byte, error) {
			return p.Renderer.RenderNotFound(ctx, page)
		}}, nil
	}
	return Page{}, fmt.Errorf("unknown route kind %q", r.Kind)
}

func (p *Pages) common(r site.Route, title string) render.Common {
	alts := make([]render.Alternate, 0, len(p.Locales.All()))
	for _, lang := range p.Locales.All() {
		alts = append(alts, render.Alternate{
			Lang: lang,
			Name: p.Locales.DisplayName(lang),
			URL:  p.Locales.Path(lang, r.Path),
		})
	}
	return render.Common{
		Site:       p.Cfg.Site,
		Lang:       r.Lang,
		Title:      title,
		Alternates: alts,
		LiveReload: p.LiveReload,
	}
}

func (p *Pages) listOptions(lang string) index.ListOptions {
	return index.ListOptions{
		Lang:         lang,
		Sort:         p.Cfg.Site.SortMode,
		Page:         1,
		Size:         100,
		IncludeDraft: p.IncludeDraft,
	}
}

// listAll 逐页取完整个列表
func (p *Pages) listAll(lang string, fetch func(opt index.ListOptions) ([]content.ArticleMeta, error)) ([]content.ArticleMeta, error) {
	opt := p.listOptions(lang)
	var out []content.ArticleMeta
	for {
		items, err := fetch(opt)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) < opt.Size {
			return out, nil
		}
		opt.Page++
	}
}

// Visible returns the listed articles of a locale in site sort order.
func (p *Pages) Visible(lang string) ([]content.ArticleMeta, error) {
	metas, err := p.Index.AllMetas(lang)
	if err != nil {
		return nil, err
	}
	out := make([]content.ArticleMeta, 0, len(metas))
	for _, m := range metas {
		if m.Hidden || (m.Draft && !p.IncludeDraft) {
			continue
		}
		out = append(out, m)
	}
	return taxonomy.SortByDate(out, p.Cfg.Site.SortMode), nil
}

func (p *Pages) home(r site.Route) (Page, error) {
	opt := p.listOptions(r.Lang)
	opt.Size = homePageSize
	items, err := p.Index.HomeItems(opt)
	if err != nil {
		return Page{}, err
	}

	viewItems := make([]render.HomeItem, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case index.HomePost:
			viewItems = append(viewItems, render.HomeItem{Kind: render.HomeItemPost, Post: it.Meta})
		case index.HomeSeries:
			var rep content.ArticleMeta
			if it.Series.RepresentativeSlug != "" {
				if m, err := p.Index.GetMeta(r.Lang, it.Series.RepresentativeSlug); err == nil {
					rep = m
				}
			}
			viewItems = append(viewItems, render.HomeItem{
				Kind: render.HomeItemSeries,
				Series: &render.HomeSeriesItem{
					Name:               it.Series.Name,
					Count:              it.Series.Count,
					LatestUpdated:      it.Series.LatestUpdated,
					MaxSticky:          it.Series.MaxSticky,
					RepresentativePost: rep,
				},
			})
		}
	}

	page := render.HomePage{
		Common:   p.common(r, p.Cfg.Site.Title),
		Items:    viewItems,
		Page:     1,
		PageSize: opt.Size,
	}
	return Page{Route: r, Data: page, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderHome(ctx, page)
	}}, nil
}

func (p *Pages) post(r site.Route, standalone bool) (Page, error) {
	meta, err := p.Index.GetMeta(r.Lang, r.Slug)
	if err != nil {
		return Page{}, err
	}
	// hidden 文章只能作为独立页面访问
	if meta.Hidden && !standalone {
		return Page{}, domainerr.ErrNotFound
	}

	common := p.common(r, meta.Title)
	all, err := p.allLocales()
	if err != nil {
		return Page{}, err
	}
	if !standalone {
		common.Alternates = common.Alternates[:0]
		common.Alternates = append(common.Alternates, render.Alternate{
			Lang: meta.Lang,
			Name: p.Locales.DisplayName(meta.Lang),
			URL:  p.Locales.Path(meta.Lang, site.PostPath(meta)),
		})
		translations := taxonomy.Translations(meta, all)
		for _, lang := range p.Locales.All() {
			tr, ok := translations[lang]
			if !ok {
				continue
			}
			common.Alternates = append(common.Alternates, render.Alternate{
				Lang: lang,
				Name: p.Locales.DisplayName(lang),
				URL:  p.Locales.Path(lang, site.PostPath(tr)),
			})
		}
	}

	pp := render.NewPostPage(common, meta, p.Corpus.HTML(r.Lang, r.Slug), p.Cfg.TOC)
	if name := meta.Series.Name; name != "" {
		pp.SeriesName = name
		pp.SeriesList, err = p.listAll(r.Lang, func(opt index.ListOptions) ([]content.ArticleMeta, error) {
			return p.Index.ListSeries(name, opt)
		})
		if err != nil {
			return Page{}, err
		}
	}
	if !standalone {
		visible, err := p.Visible(r.Lang)
		if err != nil {
			return Page{}, err
		}
		pp.Related = taxonomy.Related(meta, visible, relatedCount)
	}
	return Page{Route: r, Data: pp, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderPost(ctx, pp)
	}}, nil
}

func (p *Pages) allLocales() ([]content.ArticleMeta, error) {
	var all []content.ArticleMeta
	for _, lang := range p.Locales.All() {
		metas, err := p.Index.AllMetas(lang)
		if err != nil {
			return nil, err
		}
		for _, m := range metas {
			if !m.Hidden && (!m.Draft || p.IncludeDraft) {
				all = append(all, m)
			}
		}
	}
	return all, nil
}

func (p *Pages) series(r site.Route) (Page, error) {
	items, err := p.listAll(r.Lang, func(opt index.ListOptions) ([]content.ArticleMeta, error) {
		return p.Index.ListSeries(r.Key, opt)
	})
	if err != nil {
		return Page{}, err
	}
	sum, err := p.Index.GetSeriesSummary(r.Lang, r.Key, p.IncludeDraft)
	if err != nil {
		return Page{}, err
	}
	sp := render.SeriesPage{
		Common: p.common(r, r.Key),
		Name:   r.Key,
		Items:  items,
		Count:  sum.Count,
		Latest: sum.LatestUpdated,
	}
	return Page{Route: r, Data: sp, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderSeries(ctx, sp)
	}}, nil
}

func (p *Pages) list(r site.Route) (Page, error) {
	fetch := func(opt index.ListOptions) ([]content.ArticleMeta, error) {
		return p.Index.ListByTag(r.Key, opt)
	}
	if r.Kind == site.RouteCategory {
		fetch = func(opt index.ListOptions) ([]content.ArticleMeta, error) {
			return p.Index.ListByCategory(r.Key, opt)
		}
	}
	items, err := p.listAll(r.Lang, fetch)
	if err != nil {
		return Page{}, err
	}
	if len(items) == 0 {
		return Page{}, domainerr.ErrNotFound
	}

	lp := render.ListPage{
		Common:   p.common(r, r.Key),
		Items:    items,
		Page:     1,
		PageSize: len(items),
		Total:    len(items),
	}
	if r.Kind == site.RouteCategory {
		lp.Category = r.Key
	} else {
		lp.Tag = r.Key
	}
	return Page{Route: r, Data: lp, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderList(ctx, lp)
	}}, nil
}

func (p *Pages) archives(r site.Route) (Page, error) {
	visible, err := p.Visible(r.Lang)
	if err != nil {
		return Page{}, err
	}
	page := render.ArchivesPage{
		Common: p.common(r, "Archives"),
		Groups: taxonomy.GroupByYear(visible),
		Total:  len(visible),
	}
	return Page{Route: r, Data: page, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderArchives(ctx, page)
	}}, nil
}

func (p *Pages) tags(r site.Route) (Page, error) {
	visible, err := p.Visible(r.Lang)
	if err != nil {
		return Page{}, err
	}
	stats := taxonomy.CountTags(visible)
	page := render.TagsPage{
		Common: p.common(r, "Tags"),
		Tags:   stats,
		Total:  len(stats),
	}
	return Page{Route: r, Data: page, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderTagsPage(ctx, page)
	}}, nil
}

func (p *Pages) categories(r site.Route) (Page, error) {
	visible, err := p.Visible(r.Lang)
	if err != nil {
		return Page{}, err
	}
	stats := taxonomy.CountCategories(visible)
	page := render.CategoriesPage{
		Common:     p.common(r, "Categories"),
		Categories: stats,
		Groups:     taxonomy.GroupByCategory(visible),
		Total:      len(stats),
	}
	return Page{Route: r, Data: page, exec: func(ctx context.Context) ([]byte, error) {
		return p.Renderer.RenderCategoriesPage(ctx, page)
	}}, nil
}

// CategoryBySegment finds the category of a locale whose URL segment is seg.
func (p *Pages) CategoryBySegment(lang, seg string) (string, error) {
	visible, err := p.Visible(lang)
	if err != nil {
		return "", err
	}
	for _, st := range taxonomy.CountCategories(visible) {
		if site.Segment(st.Name) == seg {
			return st.Name, nil
		}
	}
	return "", domainerr.ErrNotFound
}

// SeriesBySegment finds the series of a locale whose URL segment is seg.
func (p *Pages) SeriesBySegment(lang, seg string) (string, error) {
	names, err := p.Index.ListAllSeriesNames(lang)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if site.Segment(name) == seg {
			return name, nil
		}
	}
	return "", domainerr.ErrNotFound
}

// TagBySegment finds the tag of a locale whose URL segment is seg.
func (p *Pages) TagBySegment(lang, seg string) (string, error) {
	visible, err := p.Visible(lang)
	if err != nil {
		return "", err
	}
	for _, st := range taxonomy.CountTags(visible) {
		if site.Segment(st.Name) == seg {
			return st.Name, nil
		}
	}
	return "", domainerr.ErrNotFound
}
