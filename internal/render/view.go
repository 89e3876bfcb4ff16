package render

import (
	"html/template"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	"inkpress/internal/taxonomy"
	"inkpress/internal/toc"
	"time"
)

// Alternate is the same page in another locale.
type Alternate struct {
	Lang string
	Name string
	URL  string
}

// Common is shared by every page view.
type Common struct {
	Site       config.SiteConfig
	Lang       string
	Title      string
	Alternates []Alternate
	// 开发服务器注入的热重载脚本地址
	LiveReload string
}

type PostPage struct {
	Common
	Meta content.ArticleMeta
	HTML template.HTML

	TOC       []*toc.Node
	ShowTOC   bool
	TOCLevels map[int]int
	// 大纲里实际出现的节点数，孤立的标题不算
	TOCCount int

	SeriesName string
	SeriesList []content.ArticleMeta

	Related []content.ArticleMeta
	IsDraft bool
}

// NewPostPage attaches the table of contents for headings using the site's
// TOC settings.
func NewPostPage(common Common, meta content.ArticleMeta, body []byte, conf config.TOCConfig) PostPage {
	filtered := toc.FilterByDepth(meta.Headings, conf.MaxDepth)
	outline := toc.Build(filtered, conf.MinDepth)
	return PostPage{
		Common:    common,
		Meta:      meta,
		HTML:      template.HTML(body),
		TOC:       outline,
		ShowTOC:   toc.ShouldShow(filtered, conf.MinHeadings),
		TOCLevels: toc.CountByLevel(filtered),
		TOCCount:  toc.Count(outline),
		IsDraft:   meta.Draft,
	}
}

type ListPage struct {
	Common
	SubTitle string
	Items    []content.ArticleMeta
	Page     int
	PageSize int
	Total    int
	Tag      string
	Category string
}

type SeriesPage struct {
	Common
	Name   string
	Items  []content.ArticleMeta
	Count  int
	Latest time.Time
}

type HomeItemKind string

const (
	HomeItemPost   HomeItemKind = "post"
	HomeItemSeries HomeItemKind = "series"
)

type HomeSeriesItem struct {
	Name               string
	Count              int
	LatestUpdated      time.Time
	MaxSticky          int
	RepresentativePost content.ArticleMeta
}

type HomeItem struct {
	Kind   HomeItemKind
	Post   *content.ArticleMeta
	Series *HomeSeriesItem
}

type HomePage struct {
	Common
	Items    []HomeItem
	Page     int
	PageSize int
}

type NotFoundPage struct {
	Common
	Path string
}

type ArchivesPage struct {
	Common
	Groups []taxonomy.YearGroup
	Total  int
}

type TagsPage struct {
	Common
	Tags  []taxonomy.Stat
	Total int
}

type CategoriesPage struct {
	Common
	Categories []taxonomy.Stat
	Groups     []taxonomy.CategoryGroup
	Total      int
}
