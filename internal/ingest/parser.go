package ingest

import (
	"bytes"
	"errors"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

var errNoFrontMatter = errors.New("no front matter found")
var errInvalidFrontMatter = errors.New("invalid front matter")

type FrontMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Updated     string `yaml:"updated"`

	Tags     []string `yaml:"tags"`
	Category string   `yaml:"category"`

	Sticky int    `yaml:"sticky"`
	Hidden bool   `yaml:"hidden"`
	Draft  bool   `yaml:"draft"`
	Cover  string `yaml:"cover"`

	Aliases []string `yaml:"aliases"`
	Series  struct {
		Name  string `yaml:"name"`
		Order int    `yaml:"order"`
	} `yaml:"series"`

	ShortID        string `yaml:"short"`
	Lang           string `yaml:"lang"`
	TranslationKey string `yaml:"translation_key"`
}

func ParseFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return FrontMatter{}, raw, errNoFrontMatter
	}

	// 统一换行符
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)

	if !bytes.HasPrefix(norm, []byte(sepLine)) {
		return FrontMatter{}, raw, errNoFrontMatter
	}

	// 去掉首行 "---\n"
	rest := norm[len(sepLine):]

	var yamlPart, bodyPart []byte

	if bytes.HasPrefix(rest, []byte(sepLine)) {
		// "---\n---\n正文"：空 front matter
		bodyPart = rest[len(sepLine):]
	} else if parts := bytes.SplitN(rest, []byte(closeMid), 2); len(parts) == 2 {
		yamlPart = parts[0]
		bodyPart = parts[1]
	} else if bytes.HasSuffix(rest, []byte("\n"+sep)) {
		// 结尾是 "\n---" 且无正文
		yamlPart = rest[:len(rest)-len("\n"+sep)]
	} else if bytes.Equal(bytes.TrimSpace(rest), []byte(sep)) {
		// "---\n---"：空 front matter，无正文
	} else {
		return FrontMatter{}, raw, errInvalidFrontMatter
	}

	yamlPart = bytes.TrimSpace(yamlPart)
	bodyPart = bytes.TrimSpace(bodyPart)

	var fm FrontMatter
	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &fm); err != nil {
			return FrontMatter{}, raw, err
		}
	}
	return fm, bodyPart, nil
}

// StripFrontMatter returns only the Markdown body of a source file.
func StripFrontMatter(raw []byte) []byte {
	_, body, err := ParseFrontMatter(raw)
	if err != nil {
		return raw
	}
	return body
}

// ResolveSlug prefers the front matter slug, then the title, then the file
// name without its extension and locale suffix.
func ResolveSlug(fm FrontMatter, path, lang string) string {
	if s := strings.TrimSpace(fm.Slug); s != "" {
		return slug.Make(s)
	}
	if t := strings.TrimSpace(fm.Title); t != "" {
		return slug.Make(t)
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if lang != "" {
		base = trimLangSuffix(base, lang)
	}
	return slug.Make(base)
}

func trimLangSuffix(base, lang string) string {
	ext := filepath.Ext(base)
	if ext != "" && strings.EqualFold(ext[1:], lang) {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

func ParseTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
	} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CountWords counts whitespace-separated words, with every Han, Hiragana,
// Katakana or Hangul character counted as a word of its own.
func CountWords(body []byte) int {
	n := 0
	inWord := false
	for _, r := range string(body) {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			n++
			inWord = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			inWord = false
		default:
			if !inWord {
				n++
				inWord = true
			}
		}
	}
	return n
}

// ReadMinutes estimates reading time at 250 words a minute, at least one.
func ReadMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	m := (words + 249) / 250
	if m < 1 {
		m = 1
	}
	return m
}
