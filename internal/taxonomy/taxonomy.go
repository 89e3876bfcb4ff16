package taxonomy

import (
	"github.com/maruel/natural"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	"sort"
	"strings"
)

type Stat struct {
	Name  string
	Count int
}

type CategoryGroup struct {
	Name  string
	Posts []content.ArticleMeta
}

type YearGroup struct {
	Year  int
	Posts []content.ArticleMeta
}

func CountTags(metas []content.ArticleMeta) []Stat {
	counts := make(map[string]int)
	for _, m := range metas {
		for _, t := range m.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			counts[t]++
		}
	}
	return sortedStats(counts)
}

func CountCategories(metas []content.ArticleMeta) []Stat {
	counts := make(map[string]int)
	for _, m := range metas {
		c := strings.TrimSpace(m.Category)
		if c == "" {
			continue
		}
		counts[c]++
	}
	return sortedStats(counts)
}

// 按数量降序，数量相同按名字自然序
func sortedStats(counts map[string]int) []Stat {
	stats := make([]Stat, 0, len(counts))
	for name, c := range counts {
		stats = append(stats, Stat{Name: name, Count: c})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return natural.Less(stats[i].Name, stats[j].Name)
		}
		return stats[i].Count > stats[j].Count
	})
	return stats
}

// GroupByCategory keeps the input order inside each group. Categories are
// ordered naturally by name; uncategorized posts come last under "".
func GroupByCategory(metas []content.ArticleMeta) []CategoryGroup {
	byName := make(map[string][]content.ArticleMeta)
	for _, m := range metas {
		c := strings.TrimSpace(m.Category)
		byName[c] = append(byName[c], m)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Sort(natural.StringSlice(names))
	if _, ok := byName[""]; ok {
		names = append(names, "")
	}

	groups := make([]CategoryGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, CategoryGroup{Name: name, Posts: byName[name]})
	}
	return groups
}

// GroupByYear builds the archive: newest year first, newest post first.
func GroupByYear(metas []content.ArticleMeta) []YearGroup {
	sorted := append([]content.ArticleMeta(nil), metas...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	var groups []YearGroup
	for _, m := range sorted {
		y := m.Date.Year()
		if n := len(groups); n > 0 && groups[n-1].Year == y {
			groups[n-1].Posts = append(groups[n-1].Posts, m)
			continue
		}
		groups = append(groups, YearGroup{Year: y, Posts: []content.ArticleMeta{m}})
	}
	return groups
}

// SortByDate orders posts sticky first, then newest first by the configured
// date, then by slug. The input is not modified.
func SortByDate(metas []content.ArticleMeta, mode config.SortMode) []content.ArticleMeta {
	out := append([]content.ArticleMeta(nil), metas...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Sticky != b.Sticky {
			return a.Sticky > b.Sticky
		}
		ta, tb := a.Updated, b.Updated
		if mode == config.SortCreated {
			ta, tb = a.Date, b.Date
		}
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.Slug < b.Slug
	})
	return out
}

func FilterByTag(metas []content.ArticleMeta, tag string) []content.ArticleMeta {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return filter(metas, func(m content.ArticleMeta) bool {
		for _, t := range m.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

func FilterByCategory(metas []content.ArticleMeta, cat string) []content.ArticleMeta {
	cat = strings.TrimSpace(cat)
	return filter(metas, func(m content.ArticleMeta) bool {
		return strings.EqualFold(m.Category, cat)
	})
}

func FilterByLang(metas []content.ArticleMeta, lang string) []content.ArticleMeta {
	return filter(metas, func(m content.ArticleMeta) bool {
		return m.Lang == lang
	})
}

func filter(metas []content.ArticleMeta, keep func(content.ArticleMeta) bool) []content.ArticleMeta {
	out := make([]content.ArticleMeta, 0, len(metas))
	for _, m := range metas {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Related picks up to n other posts in the same locale, ranked by shared
// tags, then same category, then recency. Posts with nothing in common are
// not related.
func Related(meta content.ArticleMeta, all []content.ArticleMeta, n int) []content.ArticleMeta {
	if n <= 0 {
		return nil
	}
	tags := make(map[string]struct{}, len(meta.Tags))
	for _, t := range meta.Tags {
		tags[t] = struct{}{}
	}

	type scored struct {
		meta   content.ArticleMeta
		shared int
		sameC  bool
	}
	var cands []scored
	for _, m := range all {
		if m.Lang != meta.Lang || m.Slug == meta.Slug {
			continue
		}
		s := scored{meta: m}
		for _, t := range m.Tags {
			if _, ok := tags[t]; ok {
				s.shared++
			}
		}
		s.sameC = meta.Category != "" && strings.EqualFold(m.Category, meta.Category)
		if s.shared == 0 && !s.sameC {
			continue
		}
		cands = append(cands, s)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.shared != b.shared {
			return a.shared > b.shared
		}
		if a.sameC != b.sameC {
			return a.sameC
		}
		if !a.meta.Updated.Equal(b.meta.Updated) {
			return a.meta.Updated.After(b.meta.Updated)
		}
		return a.meta.Slug < b.meta.Slug
	})

	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]content.ArticleMeta, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.meta)
	}
	return out
}

// Translations returns the other-locale versions of meta, keyed by locale.
func Translations(meta content.ArticleMeta, all []content.ArticleMeta) map[string]content.ArticleMeta {
	out := make(map[string]content.ArticleMeta)
	if meta.TranslationKey == "" {
		return out
	}
	for _, m := range all {
		if m.Lang == meta.Lang || m.TranslationKey != meta.TranslationKey {
			continue
		}
		out[m.Lang] = m
	}
	return out
}
