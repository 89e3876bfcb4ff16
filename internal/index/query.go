package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	domainerr "inkpress/internal/domain/errors"
	"sort"
	"strings"
	"time"
)

type ListOptions struct {
	Lang         string
	Sort         config.SortMode
	Page         int
	Size         int
	IncludeDraft bool
}

func (s *Store) GetMeta(lang, slug string) (content.ArticleMeta, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || lang == "" {
		return content.ArticleMeta{}, domainerr.ErrNotFound
	}
	var m content.ArticleMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		m, err = getMeta(tx, metaKey(lang, slug))
		return err
	})
	return m, err
}

func getMeta(tx *bolt.Tx, key []byte) (content.ArticleMeta, error) {
	var m content.ArticleMeta
	b := tx.Bucket(bMeta)
	if b == nil {
		return m, domainerr.ErrNotFound
	}
	v := b.Get(key)
	if v == nil {
		return m, domainerr.ErrNotFound
	}
	err := json.Unmarshal(v, &m)
	return m, err
}

// ResolveAlias maps a current or retired slug of the locale to the current one.
func (s *Store) ResolveAlias(lang, slugOrOld string) (string, error) {
	slugOrOld = strings.TrimSpace(slugOrOld)
	if slugOrOld == "" {
		return "", domainerr.ErrNotFound
	}
	if _, err := s.GetMeta(lang, slugOrOld); err == nil {
		return slugOrOld, nil
	}

	var mapped string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bAlias)
		if b == nil {
			return domainerr.ErrNotFound
		}
		v := b.Get(metaKey(lang, strings.ToLower(slugOrOld)))
		if v == nil {
			return domainerr.ErrNotFound
		}
		mapped = string(v)
		return nil
	})
	return mapped, err
}

// GetByShortID returns the locale and slug a short link points at.
func (s *Store) GetByShortID(shortID string) (lang, slug string, err error) {
	shortID = strings.TrimSpace(shortID)
	if shortID == "" {
		return "", "", domainerr.ErrNotFound
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bShort)
		if b == nil {
			return domainerr.ErrNotFound
		}
		v := b.Get([]byte(shortID))
		if v == nil {
			return domainerr.ErrNotFound
		}
		var ok bool
		if lang, slug, ok = splitMetaKey(v); !ok {
			return domainerr.ErrNotFound
		}
		return nil
	})
	return lang, slug, err
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// langBucket 返回 parent/lang[/name]，不存在时为 nil
func langBucket(tx *bolt.Tx, parent []byte, lang, name string) *bolt.Bucket {
	b := tx.Bucket(parent)
	if b == nil {
		return nil
	}
	if b = b.Bucket([]byte(lang)); b == nil {
		return nil
	}
	if name != "" {
		b = b.Bucket([]byte(name))
	}
	return b
}

// scan walks an index bucket in key order and returns one page of visible
// metas.
func (s *Store) scan(opt ListOptions, bucket func(tx *bolt.Tx) *bolt.Bucket, slugOf func([]byte) string) ([]content.ArticleMeta, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.ArticleMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := bucket(tx)
		if idx == nil {
			return nil
		}
		skip := (opt.Page - 1) * opt.Size
		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			slug := slugOf(k)
			if slug == "" {
				continue
			}
			m, err := getMeta(tx, metaKey(opt.Lang, slug))
			if err != nil {
				continue
			}
			if m.Hidden || (m.Draft && !opt.IncludeDraft) {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, m)
			if len(out) >= opt.Size {
				break
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) List(opt ListOptions) ([]content.ArticleMeta, error) {
	name := bIdxUpdated
	if opt.Sort == config.SortCreated {
		name = bIdxCreated
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return langBucket(tx, name, opt.Lang, "")
	}, slugFromStickyTimeSlugKey)
}

func (s *Store) ListByTag(tag string, opt ListOptions) ([]content.ArticleMeta, error) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if tag == "" {
		return nil, nil
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return langBucket(tx, bIdxTag, opt.Lang, tag)
	}, slugFromStickyTimeSlugKey)
}

func (s *Store) ListByCategory(cat string, opt ListOptions) ([]content.ArticleMeta, error) {
	cat = strings.TrimSpace(cat)
	if cat == "" {
		return nil, nil
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return langBucket(tx, bIdxCat, opt.Lang, cat)
	}, slugFromStickyTimeSlugKey)
}

// ListSeries returns the series members of a locale in series order.
func (s *Store) ListSeries(name string, opt ListOptions) ([]content.ArticleMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.scan(opt, func(tx *bolt.Tx) *bolt.Bucket {
		return langBucket(tx, bIdxSeries, opt.Lang, name)
	}, slugFromSeriesKey)
}

func (s *Store) ListAllSeriesNames(lang string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := langBucket(tx, bIdxSeries, lang, "")
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			// 值为 nil 的是子 bucket
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// SeriesSummary describes one series of a locale as a whole.
type SeriesSummary struct {
	Name               string
	Lang               string
	Count              int
	LatestUpdated      time.Time
	MaxSticky          int
	RepresentativeSlug string
}

func (s *Store) GetSeriesSummary(lang, name string, includeDraft bool) (*SeriesSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerr.ErrNotFound
	}
	sum := SeriesSummary{Name: name, Lang: lang}
	err := s.db.View(func(tx *bolt.Tx) error {
		sb := langBucket(tx, bIdxSeries, lang, name)
		if sb == nil {
			return domainerr.ErrNotFound
		}
		c := sb.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			slug := slugFromSeriesKey(k)
			if slug == "" {
				continue
			}
			m, err := getMeta(tx, metaKey(lang, slug))
			if err != nil {
				continue
			}
			if m.Hidden || (m.Draft && !includeDraft) {
				continue
			}

			sum.Count++
			if sum.RepresentativeSlug == "" || m.Updated.After(sum.LatestUpdated) {
				sum.LatestUpdated = m.Updated
				sum.RepresentativeSlug = m.Slug
			}
			if m.Sticky > sum.MaxSticky {
				sum.MaxSticky = m.Sticky
			}
		}
		if sum.Count == 0 {
			return domainerr.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// AllMetas returns every indexed meta of a locale, hidden ones included.
func (s *Store) AllMetas(lang string) ([]content.ArticleMeta, error) {
	var out []content.ArticleMeta
	prefix := metaKey(lang, "")
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var m content.ArticleMeta
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}
