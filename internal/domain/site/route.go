package site

import (
	"fmt"
	"github.com/gosimple/slug"
	"inkpress/internal/domain/content"
	"strings"
)

type RouteKind string

const (
	RouteIndex      RouteKind = "index"
	RoutePost       RouteKind = "post"
	RouteTag        RouteKind = "tag"
	RouteTags       RouteKind = "tags"
	RouteCategory   RouteKind = "category"
	RouteCategories RouteKind = "categories"
	RouteArchive    RouteKind = "archive"
	RouteAbout      RouteKind = "about"
	RouteLinks      RouteKind = "links"
	RouteNotFound   RouteKind = "404"
	RouteSeries     RouteKind = "series"
)

// Route is one output page of a locale.
type Route struct {
	Kind RouteKind
	Lang string
	Slug string
	// tag / category / series 名
	Key  string
	Page int
	// 不带语言前缀的站内路径
	Path    string
	OutPath string
}

func (r Route) String() string {
	parts := []string{string(r.Kind)}
	if r.Lang != "" {
		parts = append(parts, "lang="+r.Lang)
	}
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// PostPath is the locale-independent path of an article page.
func PostPath(m content.ArticleMeta) string {
	d := m.Date
	return fmt.Sprintf("/post/%04d/%02d/%02d/%s/", d.Year(), int(d.Month()), d.Day(), m.Slug)
}

// Segment turns a category or series name into a URL path segment.
func Segment(name string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return "untitled"
}
