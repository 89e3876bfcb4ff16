package i18n

import (
	"inkpress/internal/domain/config"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testLocales(t *testing.T, mutate func(*config.Config)) *Locales {
	t.Helper()
	cfg := config.Default()
	cfg.Site.SiteURL = "https://blog.example.com/"
	cfg.I18n.Locales = []string{"en", "zh-CN", "de"}
	cfg.I18n.DefaultLocale = "en"
	if mutate != nil {
		mutate(&cfg)
	}
	l, err := NewLocales(cfg)
	if err != nil {
		t.Fatalf("NewLocales() error = %v", err)
	}
	return l
}

func TestLocales_Path(t *testing.T) {
	l := testLocales(t, nil)
	tests := []struct {
		lang, in, want string
	}{
		{"en", "", "/"},
		{"en", "/", "/"},
		{"en", "tags/go", "/tags/go/"},
		{"zh-CN", "/", "/zh-CN/"},
		{"zh-cn", "/post/2024/01/02/hello", "/zh-CN/post/2024/01/02/hello/"},
		{"de", "/highlight.css", "/de/highlight.css"},
		{"fr", "/archives/", "/archives/"},
		{"en", "//a/../b/", "/b/"},
	}
	for _, tt := range tests {
		if got := l.Path(tt.lang, tt.in); got != tt.want {
			t.Errorf("Path(%q, %q): expected %q, got %q", tt.lang, tt.in, tt.want, got)
		}
	}
}

func TestLocales_PathWithBaseAndPrefixedDefault(t *testing.T) {
	l := testLocales(t, func(c *config.Config) {
		c.Build.BasePath = "/blog"
		c.I18n.PrefixDefault = true
	})
	if got, want := l.Path("en", "/tags/"), "/blog/en/tags/"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := l.URL("de", "/"), "https://blog.example.com/blog/de/"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := l.OutPath("en", "/tags/go"), filepath.Join("en", "tags", "go", "index.html"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLocales_OutPath(t *testing.T) {
	l := testLocales(t, nil)
	tests := []struct {
		lang, in, want string
	}{
		{"en", "/", "index.html"},
		{"en", "/404.html", "404.html"},
		{"zh-CN", "/archives", filepath.Join("zh-CN", "archives", "index.html")},
	}
	for _, tt := range tests {
		if got := l.OutPath(tt.lang, tt.in); got != tt.want {
			t.Errorf("OutPath(%q, %q): expected %q, got %q", tt.lang, tt.in, tt.want, got)
		}
	}
}

func TestLocales_StripLocale(t *testing.T) {
	l := testLocales(t, nil)
	tests := []struct {
		in       string
		lang     string
		rest     string
		explicit bool
	}{
		{"/", "en", "/", false},
		{"/tags/go/", "en", "/tags/go/", false},
		{"/zh-CN", "zh-CN", "/", true},
		{"/zh-cn/post/a/", "zh-CN", "/post/a/", true},
		{"/deutsch/", "en", "/deutsch/", false},
	}
	for _, tt := range tests {
		lang, rest, explicit := l.StripLocale(tt.in)
		if lang != tt.lang || rest != tt.rest || explicit != tt.explicit {
			t.Errorf("StripLocale(%q): expected (%q, %q, %v), got (%q, %q, %v)",
				tt.in, tt.lang, tt.rest, tt.explicit, lang, rest, explicit)
		}
	}
}

func TestLocales_Match(t *testing.T) {
	l := testLocales(t, nil)
	tests := []struct {
		accept, want string
	}{
		{"", "en"},
		{"zh-CN,zh;q=0.9", "zh-CN"},
		{"de-AT,de;q=0.8,en;q=0.5", "de"},
		{"ja", "en"},
		{"!!!", "en"},
	}
	for _, tt := range tests {
		if got := l.Match(tt.accept); got != tt.want {
			t.Errorf("Match(%q): expected %q, got %q", tt.accept, tt.want, got)
		}
	}
}

func TestLocales_AllDefaultFirst(t *testing.T) {
	l := testLocales(t, func(c *config.Config) {
		c.I18n.DefaultLocale = "de"
	})
	want := []string{"de", "en", "zh-CN"}
	if got := l.All(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if l.Normalize("") != "de" || l.Normalize("EN") != "en" {
		t.Errorf("unexpected normalization")
	}
}

func TestLocales_DisplayName(t *testing.T) {
	l := testLocales(t, nil)
	if got := l.DisplayName("de"); got != "Deutsch" {
		t.Errorf("expected %q, got %q", "Deutsch", got)
	}
}

func TestCatalog_Fallbacks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("toc: Contents\nread_more: Read more\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "zh-CN.yaml"), []byte("toc: 目录\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(dir, testLocales(t, nil))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	tests := []struct {
		lang, key, want string
	}{
		{"zh-CN", "toc", "目录"},
		{"zh-CN", "read_more", "Read more"},
		{"de", "toc", "Contents"},
		{"en", "missing", "missing"},
	}
	for _, tt := range tests {
		if got := c.T(tt.lang, tt.key); got != tt.want {
			t.Errorf("T(%q, %q): expected %q, got %q", tt.lang, tt.key, tt.want, got)
		}
	}
}

func TestCatalog_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("- not\n- a map\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(dir, testLocales(t, nil)); err == nil {
		t.Fatal("expected parse error")
	}
}
