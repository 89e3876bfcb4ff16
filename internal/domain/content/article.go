package content

import (
	"github.com/gosimple/slug"
	domainerr "inkpress/internal/domain/errors"
	"inkpress/internal/toc"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxDescriptionRunes = 160
	MaxSticky           = 100
)

type Series struct {
	Name  string
	Order int
}

type ArticleMeta struct {
	Title   string
	Slug    string
	Lang    string
	Date    time.Time
	Updated time.Time

	Tags     []string
	Category string

	Series      Series
	Description string
	Summary     string
	Cover       string

	Sticky int
	Hidden bool
	Draft  bool

	Aliases []string

	// 同一篇文章的不同语言版本共享这个 key
	TranslationKey string

	// 由解析阶段填充（但仍属于 domain 数据）
	WordCount int
	ReadMin   int

	// 结构化信息：渲染 / TOC / 相关文章 会用
	Headings []toc.Heading
	ShortID  string
}

type BodyRef struct {
	SourcePath  string
	ContentHash string
}

type Article struct {
	Meta ArticleMeta
	Body BodyRef
}

// Key identifies an article across locales.
func (m ArticleMeta) Key() string {
	return m.Lang + "\x00" + m.Slug
}

func (m *ArticleMeta) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Slug = strings.TrimSpace(m.Slug)
	m.Lang = strings.TrimSpace(m.Lang)
	m.Category = strings.TrimSpace(m.Category)
	m.Description = strings.TrimSpace(m.Description)
	m.TranslationKey = strings.TrimSpace(m.TranslationKey)
	if m.TranslationKey == "" {
		m.TranslationKey = m.Slug
	}

	m.Tags = NormalizeTags(m.Tags)
	m.Aliases = normalizeStrings(m.Aliases)
	m.Series.Name = strings.TrimSpace(m.Series.Name)
	if m.Series.Order < 0 {
		m.Series.Order = 0
	}
}

// Validate checks the article against the content schema. locales lists the
// site languages an article may be written in.
func (m ArticleMeta) Validate(locales []string) error {
	var ve domainerr.ValidationError

	if m.Title == "" {
		ve.Add("title", "must not be empty")
	}
	if m.Slug == "" {
		ve.Add("slug", "must not be empty")
	}
	if utf8.RuneCountInString(m.Description) > MaxDescriptionRunes {
		ve.Add("description", "must be at most 160 characters")
	}
	if m.Sticky < 0 || m.Sticky > MaxSticky {
		ve.Add("sticky", "must be between 0 and 100")
	}
	if m.Date.IsZero() {
		ve.Add("date", "must be set")
	} else if !m.Updated.IsZero() && m.Updated.Before(m.Date) {
		ve.Add("updated", "must not be before date")
	}
	if len(locales) > 0 && !slices.Contains(locales, m.Lang) {
		ve.Add("lang", "unknown locale "+m.Lang)
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

// NormalizeTags lower-cases tags into URL-safe slugs and drops duplicates.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = slug.Make(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		item = strings.ToLower(item)
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
