package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type SourceFile struct {
	Path string
	// 相对 source 目录的路径，统一用 '/'
	Rel string
}

func DiscoverSource(root string) ([]SourceFile, error) {
	var out []SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(d.Name()) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, SourceFile{Path: path, Rel: filepath.ToSlash(rel)})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Rel < out[j].Rel })
	return out, err
}

func isMarkdown(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

// LocaleSet is the part of the site locales ingest needs.
type LocaleSet interface {
	All() []string
	Default() string
	Has(lang string) bool
	Normalize(lang string) string
}

// ResolveLang picks the article locale: front matter first, then a
// "name.<lang>.md" suffix, then a top-level "<lang>/" directory, then the
// site default. An unknown front matter locale is returned as written so
// schema validation can report it.
func ResolveLang(fmLang string, sf SourceFile, locales LocaleSet) string {
	if l := strings.TrimSpace(fmLang); l != "" {
		if locales.Has(l) {
			return locales.Normalize(l)
		}
		return l
	}

	base := filepath.Base(sf.Rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if ext := filepath.Ext(base); ext != "" && locales.Has(ext[1:]) {
		return locales.Normalize(ext[1:])
	}

	if dir, _, ok := strings.Cut(sf.Rel, "/"); ok && locales.Has(dir) {
		return locales.Normalize(dir)
	}
	return locales.Default()
}
