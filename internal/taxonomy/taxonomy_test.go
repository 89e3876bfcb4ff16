package taxonomy

import (
	"inkpress/internal/domain/config"
	"inkpress/internal/domain/content"
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func fixture() []content.ArticleMeta {
	return []content.ArticleMeta{
		{Slug: "a", Lang: "en", Tags: []string{"go", "web"}, Category: "Dev", Date: day(2023, 5, 1), Updated: day(2024, 1, 1), TranslationKey: "a"},
		{Slug: "b", Lang: "en", Tags: []string{"go"}, Category: "Dev", Date: day(2024, 2, 1), Updated: day(2024, 2, 1), TranslationKey: "b"},
		{Slug: "c", Lang: "en", Tags: []string{"life"}, Date: day(2024, 3, 1), Updated: day(2024, 3, 1), Sticky: 5, TranslationKey: "c"},
		{Slug: "d", Lang: "en", Tags: []string{"web", "css"}, Category: "Design", Date: day(2022, 7, 1), Updated: day(2022, 7, 1), TranslationKey: "d"},
		{Slug: "a-zh", Lang: "zh-CN", Tags: []string{"go"}, Category: "Dev", Date: day(2023, 5, 2), Updated: day(2024, 1, 2), TranslationKey: "a"},
	}
}

func slugs(metas []content.ArticleMeta) []string {
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.Slug)
	}
	return out
}

func TestCountTags(t *testing.T) {
	got := CountTags(FilterByLang(fixture(), "en"))
	want := []Stat{{"go", 2}, {"web", 2}, {"css", 1}, {"life", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCountTags_NaturalOrder(t *testing.T) {
	got := CountTags([]content.ArticleMeta{{Tags: []string{"part10", "part2", "part1"}}})
	want := []Stat{{"part1", 1}, {"part2", 1}, {"part10", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCountCategories(t *testing.T) {
	got := CountCategories(fixture())
	want := []Stat{{"Dev", 3}, {"Design", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(FilterByLang(fixture(), "en"))
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	if want := []string{"Design", "Dev", ""}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected groups %v, got %v", want, names)
	}
	if got := slugs(groups[1].Posts); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected Dev posts [a b], got %v", got)
	}
}

func TestGroupByYear(t *testing.T) {
	groups := GroupByYear(FilterByLang(fixture(), "en"))
	var years []int
	for _, g := range groups {
		years = append(years, g.Year)
	}
	if want := []int{2024, 2023, 2022}; !reflect.DeepEqual(years, want) {
		t.Fatalf("expected years %v, got %v", want, years)
	}
	if got := slugs(groups[0].Posts); !reflect.DeepEqual(got, []string{"c", "b"}) {
		t.Errorf("expected 2024 posts [c b], got %v", got)
	}
}

func TestSortByDate(t *testing.T) {
	in := FilterByLang(fixture(), "en")

	if got, want := slugs(SortByDate(in, config.SortUpdated)), []string{"c", "b", "a", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("updated: expected %v, got %v", want, got)
	}
	if got, want := slugs(SortByDate(in, config.SortCreated)), []string{"c", "b", "a", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("created: expected %v, got %v", want, got)
	}
	if in[0].Slug != "a" {
		t.Error("expected input order untouched")
	}
}

func TestSortByDate_SlugTieBreak(t *testing.T) {
	d := day(2024, 1, 1)
	in := []content.ArticleMeta{{Slug: "z", Updated: d}, {Slug: "m", Updated: d}}
	if got := slugs(SortByDate(in, config.SortUpdated)); !reflect.DeepEqual(got, []string{"m", "z"}) {
		t.Errorf("expected [m z], got %v", got)
	}
}

func TestFilters(t *testing.T) {
	all := fixture()
	if got := slugs(FilterByTag(all, " GO ")); !reflect.DeepEqual(got, []string{"a", "b", "a-zh"}) {
		t.Errorf("tag: unexpected %v", got)
	}
	if got := slugs(FilterByCategory(all, "dev")); !reflect.DeepEqual(got, []string{"a", "b", "a-zh"}) {
		t.Errorf("category: unexpected %v", got)
	}
	if got := FilterByTag(nil, "go"); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestRelated(t *testing.T) {
	all := fixture()
	got := slugs(Related(all[0], all, 5))
	// b: 1 个共同标签 + 同分类；d: 1 个共同标签；c 没有交集
	if want := []string{"b", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := Related(all[0], all, 1); len(got) != 1 || got[0].Slug != "b" {
		t.Errorf("expected limit to keep best match, got %v", slugs(got))
	}
	if got := Related(all[0], all, 0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestTranslations(t *testing.T) {
	all := fixture()
	got := Translations(all[0], all)
	if len(got) != 1 || got["zh-CN"].Slug != "a-zh" {
		t.Errorf("expected zh-CN translation, got %v", got)
	}
	if got := Translations(all[1], all); len(got) != 0 {
		t.Errorf("expected no translations, got %v", got)
	}
}
