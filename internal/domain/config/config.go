package config

import (
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
	domainerr "inkpress/internal/domain/errors"
	"inkpress/internal/toc"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	I18n    I18nConfig    `yaml:"i18n"`
	Build   BuildConfig   `yaml:"build"`
	TOC     TOCConfig     `yaml:"toc"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

type SiteConfig struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Author      string   `yaml:"author"`
	SiteURL     string   `yaml:"site_url"`
	Theme       string   `yaml:"themes"`
	SortMode    SortMode `yaml:"sort_mode"`
	TimeZone    string   `yaml:"time_zone"`
	Description string   `yaml:"description"`
}

type SortMode string

const (
	SortUpdated SortMode = "updated"
	SortCreated SortMode = "created"
)

type I18nConfig struct {
	Locales       []string `yaml:"locales"`
	DefaultLocale string   `yaml:"default_locale"`
	// 默认语言是否也带 /<lang> 前缀
	PrefixDefault bool `yaml:"prefix_default"`
}

type BuildConfig struct {
	SourceDir    string    `yaml:"source_dir"`
	PublicDir    string    `yaml:"public_dir"`
	ThemeDir     string    `yaml:"theme_dir"`
	BasePath     string    `yaml:"base_path"`
	IndexPath    string    `yaml:"index_path"`
	IncludeDraft bool      `yaml:"include_draft"`
	Workers      int       `yaml:"workers"`
	Now          time.Time `yaml:"-"`
}

type TOCConfig struct {
	MinDepth    int `yaml:"min_depth"`
	MaxDepth    int `yaml:"max_depth"`
	MinHeadings int `yaml:"min_headings"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Destination string `yaml:"destination"`
}

type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	Debounce time.Duration `yaml:"debounce"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "inkpress",
			Theme:    "default",
			SortMode: SortUpdated,
		},
		I18n: I18nConfig{
			Locales:       []string{"en"},
			DefaultLocale: "en",
		},
		Build: BuildConfig{
			SourceDir:    "source",
			PublicDir:    "public",
			ThemeDir:     "themes",
			BasePath:     "",
			IndexPath:    ".inkpress/index.db",
			IncludeDraft: false,
			Now:          time.Now(),
		},
		TOC: TOCConfig{
			MinDepth:    toc.DefaultMinDepth,
			MaxDepth:    toc.DefaultMaxDepth,
			MinHeadings: toc.DefaultMinHeadings,
		},
		Logging: LoggingConfig{
			Level: "normal",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Debounce: 200 * time.Millisecond,
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	switch c.Site.SortMode {
	case "", SortUpdated:
	// default ok
	case SortCreated:
	default:
		ve.Add("site.sort_mode", "must be 'updated' or 'created'")
	}

	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.themes", "must not be empty")
	}
	if tz := strings.TrimSpace(c.Site.TimeZone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			ve.Add("site.time_zone", "unknown time zone "+tz)
		}
	}

	if len(c.I18n.Locales) == 0 {
		ve.Add("i18n.locales", "must list at least one locale")
	}
	for _, l := range c.I18n.Locales {
		if _, err := language.Parse(l); err != nil {
			ve.Add("i18n.locales", "invalid locale tag "+l)
		}
	}
	if def := strings.TrimSpace(c.I18n.DefaultLocale); def == "" {
		ve.Add("i18n.default_locale", "must not be empty")
	} else if !slices.Contains(c.I18n.Locales, def) {
		ve.Add("i18n.default_locale", "must be one of i18n.locales")
	}

	if strings.TrimSpace(c.Build.SourceDir) == "" {
		ve.Add("build.source_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ThemeDir) == "" {
		ve.Add("build.theme_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	if bp := strings.TrimSpace(c.Build.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("build.base_path", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") && bp != "/" {
			ve.Add("build.base_path", "must not end with '/'")
		}
	}
	if c.Build.Workers < 0 {
		ve.Add("build.workers", "must not be negative")
	}

	if c.TOC.MinDepth < 1 {
		ve.Add("toc.min_depth", "must be at least 1")
	}
	if c.TOC.MaxDepth < c.TOC.MinDepth {
		ve.Add("toc.max_depth", "must not be less than toc.min_depth")
	}
	if c.TOC.MinHeadings < 0 {
		ve.Add("toc.min_headings", "must not be negative")
	}

	switch c.Logging.Level {
	case "", "none", "normal", "debug":
	default:
		ve.Add("logging.level", "must be 'none', 'normal' or 'debug'")
	}

	if c.Server.Debounce < 0 {
		ve.Add("server.debounce", "must not be negative")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Location 返回站点时区，未配置时用本地时区
func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Site.TimeZone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

func (c Config) ThemePath(parts ...string) string {
	return filepath.Join(append([]string{c.Build.ThemeDir, c.Site.Theme}, parts...)...)
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return decode(cfg, data)
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在：用默认配置，但要注意 Validate 可能会因为 SiteURL 之类失败
			if err := cfg.Validate(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}
	return decode(cfg, data)
}

func decode(cfg Config, data []byte) (Config, error) {
	// 直接 Unmarshal 到 cfg 上：文件中写到的字段覆盖默认值，其他字段保留 Default
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	// 没指定 Now 的话用当前时间
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if cfg.Site.SortMode == "" {
		cfg.Site.SortMode = SortUpdated
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
