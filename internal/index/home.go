package index

import (
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	"sort"
)

type HomeItemKind string

const (
	HomePost   HomeItemKind = "post"
	HomeSeries HomeItemKind = "series"
)

type HomeItem struct {
	Kind   HomeItemKind
	Meta   *content.ArticleMeta
	Series *SeriesSummary
}

// rank 返回排序用的置顶值和时间
func (it HomeItem) rank(mode config.SortMode) (int, int64) {
	if it.Kind == HomeSeries {
		return it.Series.MaxSticky, it.Series.LatestUpdated.UnixNano()
	}
	if mode == config.SortCreated {
		return it.Meta.Sticky, it.Meta.Date.UnixNano()
	}
	return it.Meta.Sticky, it.Meta.Updated.UnixNano()
}

// HomeItems folds a page of posts so each series shows up once, as a
// summary card, at the rank of its stickiest and most recent member.
func (s *Store) HomeItems(opt ListOptions) ([]HomeItem, error) {
	metas, err := s.List(opt)
	if err != nil {
		return nil, err
	}
	seenSeries := make(map[string]struct{})
	items := make([]HomeItem, 0, len(metas))

	for i := range metas {
		m := &metas[i]
		if m.Series.Name == "" {
			items = append(items, HomeItem{Kind: HomePost, Meta: m})
			continue
		}
		if _, ok := seenSeries[m.Series.Name]; ok {
			continue
		}
		seenSeries[m.Series.Name] = struct{}{}

		sum, err := s.GetSeriesSummary(opt.Lang, m.Series.Name, opt.IncludeDraft)
		if err != nil {
			continue
		}
		items = append(items, HomeItem{Kind: HomeSeries, Series: sum})
	}

	sort.SliceStable(items, func(i, j int) bool {
		si, ti := items[i].rank(opt.Sort)
		sj, tj := items[j].rank(opt.Sort)
		if si != sj {
			return si > sj
		}
		return ti > tj
	})
	return items, nil
}
