package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"inkpress/internal/domain/content"
	"strings"
)

type RebuildOptions struct {
	IncludeDraft bool
}

// Rebuild replaces every article bucket with the given articles. Fingerprints
// and the last build record survive.
func (s *Store) Rebuild(articles []content.Article, opt RebuildOptions) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range rebuiltBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}

		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}
		aliasB, err := tx.CreateBucket(bAlias)
		if err != nil {
			return err
		}
		shortB, err := tx.CreateBucket(bShort)
		if err != nil {
			return err
		}
		idx := make(map[string]*bolt.Bucket, 5)
		for _, name := range [][]byte{bIdxUpdated, bIdxCreated, bIdxTag, bIdxCat, bIdxSeries} {
			b, err := tx.CreateBucket(name)
			if err != nil {
				return err
			}
			idx[string(name)] = b
		}

		for _, a := range articles {
			m := a.Meta
			if m.Draft && !opt.IncludeDraft {
				continue
			}
			if strings.TrimSpace(m.Slug) == "" || m.Lang == "" {
				continue
			}
			mb, err := json.Marshal(m)
			if err != nil {
				return err
			}
			key := metaKey(m.Lang, m.Slug)
			if err := metaB.Put(key, mb); err != nil {
				return err
			}

			uKey := makeStickyTimeSlugKey(m.Sticky, m.Updated.UnixNano(), m.Slug)
			cKey := makeStickyTimeSlugKey(m.Sticky, m.Date.UnixNano(), m.Slug)
			if err := putIndex(idx[string(bIdxUpdated)], m.Lang, "", uKey); err != nil {
				return err
			}
			if err := putIndex(idx[string(bIdxCreated)], m.Lang, "", cKey); err != nil {
				return err
			}
			for _, tag := range m.Tags {
				if err := putIndex(idx[string(bIdxTag)], m.Lang, tag, uKey); err != nil {
					return err
				}
			}
			if cat := strings.TrimSpace(m.Category); cat != "" {
				if err := putIndex(idx[string(bIdxCat)], m.Lang, cat, uKey); err != nil {
					return err
				}
			}
			if sn := m.Series.Name; sn != "" {
				sKey := makeSeriesKey(m.Series.Order, m.Updated.UnixNano(), m.Slug)
				if err := putIndex(idx[string(bIdxSeries)], m.Lang, sn, sKey); err != nil {
					return err
				}
			}

			for _, old := range m.Aliases {
				if old == m.Slug {
					continue
				}
				if err := aliasB.Put(metaKey(m.Lang, old), []byte(m.Slug)); err != nil {
					return err
				}
			}
			if sid := strings.TrimSpace(m.ShortID); sid != "" {
				if err := shortB.Put([]byte(sid), key); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// putIndex 写入 parent/lang[/name]/key
func putIndex(parent *bolt.Bucket, lang, name string, key []byte) error {
	b, err := parent.CreateBucketIfNotExists([]byte(lang))
	if err != nil {
		return err
	}
	if name != "" {
		if b, err = b.CreateBucketIfNotExists([]byte(name)); err != nil {
			return err
		}
	}
	return b.Put(key, []byte{1})
}
