package i18n

import (
	"fmt"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"inkpress/internal/domain/config"
	"path"
	"path/filepath"
	"strings"
)

// Locales knows the configured site languages and how each one maps onto
// URL paths.
type Locales struct {
	names         []string
	tags          []language.Tag
	def           string
	prefixDefault bool
	basePath      string
	siteURL       string
	matcher       language.Matcher
}

func NewLocales(cfg config.Config) (*Locales, error) {
	l := &Locales{
		def:           strings.TrimSpace(cfg.I18n.DefaultLocale),
		prefixDefault: cfg.I18n.PrefixDefault,
		basePath:      strings.TrimSuffix(strings.TrimSpace(cfg.Build.BasePath), "/"),
		siteURL:       strings.TrimSuffix(strings.TrimSpace(cfg.Site.SiteURL), "/"),
	}
	if l.def == "" {
		return nil, fmt.Errorf("i18n: missing default locale")
	}

	// matcher 的第一个 tag 是兜底语言，所以默认语言放最前
	ordered := []string{l.def}
	for _, name := range cfg.I18n.Locales {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, l.def) {
			continue
		}
		ordered = append(ordered, name)
	}
	for _, name := range ordered {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %q: %w", name, err)
		}
		l.names = append(l.names, name)
		l.tags = append(l.tags, tag)
	}
	l.matcher = language.NewMatcher(l.tags)
	return l, nil
}

func (l *Locales) Default() string { return l.def }

// All returns the locales with the default one first.
func (l *Locales) All() []string {
	return append([]string(nil), l.names...)
}

func (l *Locales) Has(lang string) bool {
	_, ok := l.canonical(lang)
	return ok
}

func (l *Locales) canonical(lang string) (string, bool) {
	for _, name := range l.names {
		if strings.EqualFold(name, lang) {
			return name, true
		}
	}
	return "", false
}

// Normalize maps lang onto its configured spelling, or the default locale
// when lang is empty or unknown.
func (l *Locales) Normalize(lang string) string {
	if name, ok := l.canonical(strings.TrimSpace(lang)); ok {
		return name
	}
	return l.def
}

// Match negotiates an Accept-Language header value against the site locales.
func (l *Locales) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.def
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(l.names) {
		return l.def
	}
	return l.names[idx]
}

func (l *Locales) Tag(lang string) language.Tag {
	for i, name := range l.names {
		if strings.EqualFold(name, lang) {
			return l.tags[i]
		}
	}
	return l.tags[0]
}

// DisplayName is the language's own name for itself, for language switchers.
func (l *Locales) DisplayName(lang string) string {
	if name := display.Self.Name(l.Tag(lang)); name != "" {
		return name
	}
	return lang
}

func (l *Locales) prefixed(lang string) bool {
	return lang != l.def || l.prefixDefault
}

// Path builds the site-absolute path of p in the given locale. Directory-like
// paths always end in a slash; paths with a file extension are left alone.
func (l *Locales) Path(lang, p string) string {
	lang = l.Normalize(lang)
	p = path.Clean("/" + p)

	var b strings.Builder
	b.WriteString(l.basePath)
	if l.prefixed(lang) {
		b.WriteString("/")
		b.WriteString(lang)
	}
	b.WriteString(p)

	out := b.String()
	if !strings.HasSuffix(out, "/") && path.Ext(p) == "" {
		out += "/"
	}
	return out
}

// URL is Path prefixed with the configured site URL.
func (l *Locales) URL(lang, p string) string {
	return l.siteURL + l.Path(lang, p)
}

// OutPath is where the page for p is written below the public directory.
func (l *Locales) OutPath(lang, p string) string {
	rel := strings.TrimPrefix(l.Path(lang, p), l.basePath)
	if strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}
	return filepath.FromSlash(strings.TrimPrefix(rel, "/"))
}

// StripLocale splits a request path into its locale and the rest of the
// path. explicit reports whether the locale came from the path itself.
func (l *Locales) StripLocale(urlPath string) (lang, rest string, explicit bool) {
	p := strings.TrimPrefix(urlPath, l.basePath)
	p = "/" + strings.TrimPrefix(p, "/")

	seg, tail, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if name, ok := l.canonical(seg); ok && seg != "" {
		return name, "/" + tail, true
	}
	return l.def, p, false
}
