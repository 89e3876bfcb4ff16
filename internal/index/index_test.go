package index

import (
	"errors"
	"inkpress/internal/domain/build"
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	domainerr "inkpress/internal/domain/errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func article(lang, slug string, d int, mut func(*content.ArticleMeta)) content.Article {
	m := content.ArticleMeta{Title: slug, Slug: slug, Lang: lang, Date: day(d), Updated: day(d)}
	if mut != nil {
		mut(&m)
	}
	m.Normalize()
	return content.Article{Meta: m}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(OpenOptions{Path: filepath.Join(t.TempDir(), "idx", "index.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixture() []content.Article {
	return []content.Article{
		article("en", "one", 1, func(m *content.ArticleMeta) {
			m.Tags = []string{"Go"}
			m.Category = "Dev"
			m.Aliases = []string{"first"}
			m.ShortID = "a1"
		}),
		article("en", "two", 2, func(m *content.ArticleMeta) {
			m.Tags = []string{"go", "web"}
			m.Series = content.Series{Name: "intro", Order: 2}
		}),
		article("en", "three", 3, func(m *content.ArticleMeta) {
			m.Series = content.Series{Name: "intro", Order: 1}
		}),
		article("en", "pinned", 1, func(m *content.ArticleMeta) { m.Sticky = 10 }),
		article("en", "secret", 4, func(m *content.ArticleMeta) { m.Hidden = true }),
		article("en", "wip", 5, func(m *content.ArticleMeta) { m.Draft = true }),
		article("zh-CN", "one", 6, func(m *content.ArticleMeta) {
			m.Tags = []string{"go"}
			m.Aliases = []string{"first"}
		}),
	}
}

func slugs(metas []content.ArticleMeta) []string {
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.Slug)
	}
	return out
}

func TestStore_ListPerLocale(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	got, err := s.List(ListOptions{Lang: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"pinned", "three", "two", "one"}; !reflect.DeepEqual(slugs(got), want) {
		t.Errorf("expected %v, got %v", want, slugs(got))
	}

	zh, err := s.List(ListOptions{Lang: "zh-CN"})
	if err != nil {
		t.Fatal(err)
	}
	if len(zh) != 1 || zh[0].Lang != "zh-CN" {
		t.Errorf("expected one zh-CN article, got %+v", zh)
	}

	page2, _ := s.List(ListOptions{Lang: "en", Page: 2, Size: 3})
	if want := []string{"one"}; !reflect.DeepEqual(slugs(page2), want) {
		t.Errorf("expected page 2 %v, got %v", want, slugs(page2))
	}
}

func TestStore_Drafts(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{IncludeDraft: true}); err != nil {
		t.Fatal(err)
	}
	without, _ := s.List(ListOptions{Lang: "en"})
	with, _ := s.List(ListOptions{Lang: "en", IncludeDraft: true})
	if len(with) != len(without)+1 {
		t.Errorf("expected drafts to be listed only on request, got %d and %d", len(without), len(with))
	}
}

func TestStore_Lookups(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}

	m, err := s.GetMeta("en", "one")
	if err != nil || m.Category != "Dev" {
		t.Fatalf("GetMeta() = %+v, %v", m, err)
	}
	if _, err := s.GetMeta("en", "missing"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetMeta("fr", "one"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other locale, got %v", err)
	}

	if got, err := s.ResolveAlias("en", "First"); err != nil || got != "one" {
		t.Errorf("ResolveAlias() = %q, %v", got, err)
	}
	if got, err := s.ResolveAlias("en", "two"); err != nil || got != "two" {
		t.Errorf("ResolveAlias() for current slug = %q, %v", got, err)
	}
	if _, err := s.ResolveAlias("en", "nope"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	lang, slug, err := s.GetByShortID("a1")
	if err != nil || lang != "en" || slug != "one" {
		t.Errorf("GetByShortID() = %q, %q, %v", lang, slug, err)
	}
}

func TestStore_TaxonomyIndexes(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}

	tagged, _ := s.ListByTag("GO", ListOptions{Lang: "en"})
	if want := []string{"two", "one"}; !reflect.DeepEqual(slugs(tagged), want) {
		t.Errorf("tag: expected %v, got %v", want, slugs(tagged))
	}
	cat, _ := s.ListByCategory("Dev", ListOptions{Lang: "en"})
	if want := []string{"one"}; !reflect.DeepEqual(slugs(cat), want) {
		t.Errorf("category: expected %v, got %v", want, slugs(cat))
	}
	series, _ := s.ListSeries("intro", ListOptions{Lang: "en"})
	if want := []string{"three", "two"}; !reflect.DeepEqual(slugs(series), want) {
		t.Errorf("series: expected %v, got %v", want, slugs(series))
	}
	names, _ := s.ListAllSeriesNames("en")
	if !reflect.DeepEqual(names, []string{"intro"}) {
		t.Errorf("expected [intro], got %v", names)
	}
	if names, _ := s.ListAllSeriesNames("zh-CN"); len(names) != 0 {
		t.Errorf("expected no zh-CN series, got %v", names)
	}

	sum, err := s.GetSeriesSummary("en", "intro", false)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 2 || sum.RepresentativeSlug != "three" || !sum.LatestUpdated.Equal(day(3)) {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestStore_HomeItems(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}
	items, err := s.HomeItems(ListOptions{Lang: "en", Sort: config.SortUpdated})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, it := range items {
		if it.Kind == HomeSeries {
			got = append(got, "series:"+it.Series.Name)
		} else {
			got = append(got, it.Meta.Slug)
		}
	}
	if want := []string{"pinned", "series:intro", "one"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStore_RebuildKeepsFingerprints(t *testing.T) {
	s := openStore(t)
	if err := s.PutFingerprints(map[string]string{"en/index.html": "h1", "old.html": "h0"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutBuildRecord(build.Record{ID: "b1", Written: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Rebuild(fixture()[:1], RebuildOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMeta("en", "two"); !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("expected second rebuild to drop old metas, got %v", err)
	}

	if fp, _ := s.Fingerprint("en/index.html"); fp != "h1" {
		t.Errorf("expected fingerprint h1, got %q", fp)
	}
	rec, err := s.LastBuildRecord()
	if err != nil || rec.ID != "b1" || rec.Written != 3 {
		t.Errorf("LastBuildRecord() = %+v, %v", rec, err)
	}

	if err := s.PruneFingerprints(map[string]struct{}{"en/index.html": {}}); err != nil {
		t.Fatal(err)
	}
	if fp, _ := s.Fingerprint("old.html"); fp != "" {
		t.Errorf("expected pruned fingerprint, got %q", fp)
	}
}

func TestStore_AllMetas(t *testing.T) {
	s := openStore(t)
	if err := s.Rebuild(fixture(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}
	en, err := s.AllMetas("en")
	if err != nil {
		t.Fatal(err)
	}
	// secret 是 hidden 但仍在索引里，wip 是草稿被跳过
	if len(en) != 5 {
		t.Errorf("expected 5 en metas, got %v", slugs(en))
	}
	zh, _ := s.AllMetas("zh-CN")
	if len(zh) != 1 {
		t.Errorf("expected 1 zh-CN meta, got %v", slugs(zh))
	}
}

func TestStickyTimeSlugKey(t *testing.T) {
	k := makeStickyTimeSlugKey(3, day(1).UnixNano(), "hello")
	if got := slugFromStickyTimeSlugKey(k); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := slugFromStickyTimeSlugKey([]byte("short")); got != "" {
		t.Errorf("expected empty slug, got %q", got)
	}
	hi := makeStickyTimeSlugKey(200, 0, "a")
	capped := makeStickyTimeSlugKey(content.MaxSticky, 0, "a")
	if string(hi) != string(capped) {
		t.Error("expected sticky to be clamped")
	}
}
