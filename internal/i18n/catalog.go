package i18n

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

// Catalog holds the theme's UI strings, one flat key/value table per locale.
type Catalog struct {
	def      string
	messages map[string]map[string]string
}

func NewCatalog(defaultLocale string) *Catalog {
	return &Catalog{
		def:      defaultLocale,
		messages: make(map[string]map[string]string),
	}
}

// LoadCatalog reads <dir>/<lang>.yaml for every locale. Missing files are
// fine; a theme without translations just shows the keys.
func LoadCatalog(dir string, locales *Locales) (*Catalog, error) {
	c := NewCatalog(locales.Default())
	for _, lang := range locales.All() {
		data, err := os.ReadFile(filepath.Join(dir, lang+".yaml"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("i18n: read %s: %w", lang, err)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", lang, err)
		}
		c.Add(lang, msgs)
	}
	return c, nil
}

func (c *Catalog) Add(lang string, msgs map[string]string) {
	m, ok := c.messages[lang]
	if !ok {
		m = make(map[string]string, len(msgs))
		c.messages[lang] = m
	}
	for k, v := range msgs {
		m[k] = v
	}
}

// T looks key up in lang, then in the default locale, then gives the key back.
func (c *Catalog) T(lang, key string) string {
	if c == nil {
		return key
	}
	if v, ok := c.messages[lang][key]; ok {
		return v
	}
	if v, ok := c.messages[c.def][key]; ok {
		return v
	}
	return key
}
