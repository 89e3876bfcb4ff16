package app

import (
	"inkpress/internal/domain/content"
	"inkpress/internal/domain/site"
	"inkpress/internal/i18n"
	"inkpress/internal/index"
	"inkpress/internal/taxonomy"
)

// 独立页面的 slug
const (
	AboutSlug = "about"
	LinksSlug = "links"
)

type RouteBuilder struct {
	Index   *index.Store
	Locales *i18n.Locales
}

func (rb *RouteBuilder) route(kind site.RouteKind, lang, p string) site.Route {
	return site.Route{
		Kind:    kind,
		Lang:    lang,
		Path:    p,
		OutPath: rb.Locales.OutPath(lang, p),
	}
}

func (rb *RouteBuilder) Post(m content.ArticleMeta) site.Route {
	r := rb.route(site.RoutePost, m.Lang, site.PostPath(m))
	r.Slug = m.Slug
	return r
}

func (rb *RouteBuilder) Series(lang, name string) site.Route {
	r := rb.route(site.RouteSeries, lang, "/series/"+site.Segment(name)+"/")
	r.Key = name
	return r
}

func (rb *RouteBuilder) Tag(lang, tag string) site.Route {
	r := rb.route(site.RouteTag, lang, "/tags/"+site.Segment(tag)+"/")
	r.Key = tag
	return r
}

func (rb *RouteBuilder) Category(lang, cat string) site.Route {
	r := rb.route(site.RouteCategory, lang, "/categories/"+site.Segment(cat)+"/")
	r.Key = cat
	return r
}

// Fixed returns the route of a page that exists once per locale.
func (rb *RouteBuilder) Fixed(kind site.RouteKind, lang string) site.Route {
	var p string
	switch kind {
	case site.RouteArchive:
		p = "/archives/"
	case site.RouteTags:
		p = "/tags/"
	case site.RouteCategories:
		p = "/categories/"
	case site.RouteAbout:
		p = "/" + AboutSlug + "/"
	case site.RouteLinks:
		p = "/" + LinksSlug + "/"
	case site.RouteNotFound:
		p = "/404.html"
	default:
		p = "/"
	}
	r := rb.route(kind, lang, p)
	switch kind {
	case site.RouteAbout:
		r.Slug = AboutSlug
	case site.RouteLinks:
		r.Slug = LinksSlug
	}
	return r
}

func (rb *RouteBuilder) BuildPostRoutes(metas []content.ArticleMeta) []site.Route {
	routes := make([]site.Route, 0, len(metas))
	for _, m := range metas {
		if m.Hidden {
			continue
		}
		routes = append(routes, rb.Post(m))
	}
	return routes
}

func (rb *RouteBuilder) BuildSeriesRoutes(lang string) ([]site.Route, error) {
	names, err := rb.Index.ListAllSeriesNames(lang)
	if err != nil {
		return nil, err
	}
	routes := make([]site.Route, 0, len(names))
	for _, name := range names {
		routes = append(routes, rb.Series(lang, name))
	}
	return routes, nil
}

// Routes plans every page of a locale. metas are the locale's indexed
// articles, hidden ones included.
func (rb *RouteBuilder) Routes(lang string, metas []content.ArticleMeta) ([]site.Route, error) {
	routes := []site.Route{
		rb.Fixed(site.RouteIndex, lang),
		rb.Fixed(site.RouteArchive, lang),
		rb.Fixed(site.RouteTags, lang),
		rb.Fixed(site.RouteCategories, lang),
		rb.Fixed(site.RouteNotFound, lang),
	}
	for _, m := range metas {
		switch m.Slug {
		case AboutSlug:
			routes = append(routes, rb.Fixed(site.RouteAbout, lang))
		case LinksSlug:
			routes = append(routes, rb.Fixed(site.RouteLinks, lang))
		}
	}

	routes = append(routes, rb.BuildPostRoutes(metas)...)

	series, err := rb.BuildSeriesRoutes(lang)
	if err != nil {
		return nil, err
	}
	routes = append(routes, series...)

	visible := visibleMetas(metas)
	for _, st := range taxonomy.CountTags(visible) {
		routes = append(routes, rb.Tag(lang, st.Name))
	}
	for _, st := range taxonomy.CountCategories(visible) {
		routes = append(routes, rb.Category(lang, st.Name))
	}
	return routes, nil
}

func visibleMetas(metas []content.ArticleMeta) []content.ArticleMeta {
	out := make([]content.ArticleMeta, 0, len(metas))
	for _, m := range metas {
		if !m.Hidden {
			out = append(out, m)
		}
	}
	return out
}
