package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"inkpress/internal/domain/content"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

type Warning struct {
	Path string
	Msg  string
	// 非 nil 表示文章不合法被跳过
	Err error
}

type Result struct {
	Article content.Article
	Warns   []Warning
	Skip    bool
	Err     error
}

type Options struct {
	SourceDir string
	Locales   LocaleSet
	Location  *time.Location
	Workers   int
	Log       *zap.Logger
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func Ingest(parent context.Context, opt Options) ([]content.Article, []Warning, error) {
	if opt.Locales == nil {
		return nil, nil, errors.New("ingest: missing locales")
	}
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}

	files, err := DiscoverSource(opt.SourceDir)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("discovered sources", zap.String("dir", opt.SourceDir), zap.Int("files", len(files)))

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan SourceFile)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				r := parseSource(sf, opt)
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer func() {
			close(jobs)
			wg.Wait()
			close(results)
		}()
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	var out []content.Article
	var warns []Warning
	var firstErr error
	for r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
				cancel()
			}
			continue
		}
		if len(r.Warns) > 0 {
			warns = append(warns, r.Warns...)
		}
		if r.Skip {
			continue
		}
		out = append(out, r.Article)
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, nil, err
	}

	// worker 返回顺序不定，排序后去重结果才稳定
	sort.Slice(out, func(i, j int) bool { return out[i].Body.SourcePath < out[j].Body.SourcePath })
	sort.SliceStable(warns, func(i, j int) bool { return warns[i].Path < warns[j].Path })

	seen := make(map[string]struct{}, len(out))
	filtered := make([]content.Article, 0, len(out))
	for _, a := range out {
		key := a.Meta.Key()
		if _, ok := seen[key]; ok {
			warns = append(warns, Warning{
				Path: a.Body.SourcePath,
				Msg:  fmt.Sprintf("duplicate slug %q for locale %s, skipped", a.Meta.Slug, a.Meta.Lang),
			})
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, a)
	}
	log.Debug("ingest finished", zap.Int("articles", len(filtered)), zap.Int("warnings", len(warns)))
	return filtered, warns, nil
}

func parseSource(sf SourceFile, opt Options) Result {
	st, err := os.Stat(sf.Path)
	if err != nil {
		return Result{Err: err}
	}
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return Result{Err: err}
	}
	contentHash := HashBytes(raw)

	fm, body, fmErr := ParseFrontMatter(raw)

	var warns []Warning
	if fmErr != nil && fmErr != errNoFrontMatter {
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "failed to parse front matter: " + fmErr.Error(),
			Err:  fmt.Errorf("%s: %w", sf.Path, fmErr),
		})
		return Result{Warns: warns, Skip: true}
	}
	if fmErr == errNoFrontMatter {
		body = raw
	}
	lang := ResolveLang(fm.Lang, sf, opt.Locales)
	meta := content.ArticleMeta{
		Title:          fm.Title,
		Slug:           ResolveSlug(fm, sf.Path, lang),
		Lang:           lang,
		Description:    fm.Description,
		Tags:           fm.Tags,
		Category:       fm.Category,
		Sticky:         fm.Sticky,
		Hidden:         fm.Hidden,
		Draft:          fm.Draft,
		Cover:          fm.Cover,
		Aliases:        fm.Aliases,
		ShortID:        strings.TrimSpace(fm.ShortID),
		TranslationKey: fm.TranslationKey,
	}
	meta.Series = content.Series{Name: fm.Series.Name, Order: fm.Series.Order}

	mt := st.ModTime().In(locationOrLocal(opt.Location))
	meta.Date = ParseTime(fm.Date, opt.Location)
	meta.Updated = ParseTime(fm.Updated, opt.Location)
	if meta.Date.IsZero() {
		meta.Date = mt
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "using file modification time for date",
		})
	}
	if meta.Updated.IsZero() {
		meta.Updated = meta.Date
	}

	meta.WordCount = CountWords(body)
	meta.ReadMin = ReadMinutes(meta.WordCount)
	meta.Normalize()

	if err := meta.Validate(opt.Locales.All()); err != nil {
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "invalid article: " + err.Error(),
			Err:  fmt.Errorf("%s: %w", sf.Path, err),
		})
		return Result{Warns: warns, Skip: true}
	}

	return Result{
		Article: content.Article{
			Meta: meta,
			Body: content.BodyRef{
				SourcePath:  sf.Path,
				ContentHash: contentHash,
			},
		},
		Warns: warns,
	}
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
