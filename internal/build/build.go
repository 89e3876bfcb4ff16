package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"inkpress/internal/app"
	domainbuild "inkpress/internal/domain/build"
	"inkpress/internal/domain/config"
	domainerr "inkpress/internal/domain/errors"
	"inkpress/internal/i18n"
	"inkpress/internal/index"
	"inkpress/internal/ingest"
	"inkpress/internal/logging"
	"inkpress/internal/render"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// 渲染逻辑变化时改这个值，让所有页面重新生成
const rendererVersion = "inkpress-render-2"

type Builder struct {
	Cfg config.Config
	Log *zap.Logger
}

type Result struct {
	BuildID  string
	Articles int
	Written  int
	Skipped  int
	Warnings []ingest.Warning
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	res := &Result{BuildID: uuid.NewString()}
	log := logging.OrNop(b.Log).Named("build").With(zap.String("build", res.BuildID))

	now := b.Cfg.Build.Now
	if now.IsZero() {
		now = started
	}

	locales, err := i18n.NewLocales(b.Cfg)
	if err != nil {
		return nil, err
	}

	arts, warns, err := ingest.Ingest(ctx, ingest.Options{
		SourceDir: b.Cfg.Build.SourceDir,
		Locales:   locales,
		Location:  b.Cfg.Location(),
		Workers:   b.Cfg.Build.Workers,
		Log:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest failed: %w", err)
	}
	res.Articles = len(arts)
	res.Warnings = warns
	for _, w := range warns {
		log.Warn(w.Msg, zap.String("path", w.Path))
	}

	corpus, err := app.Prepare(ctx, render.NewMarkdownRenderer(), arts)
	if err != nil {
		return nil, err
	}

	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()
	if prev, err := st.LastBuildRecord(); err == nil {
		log.Debug("previous build", zap.String("path", st.Path()), zap.String("id", prev.ID), zap.Time("started", prev.StartedAt))
	}

	if err := st.Rebuild(arts, index.RebuildOptions{
		IncludeDraft: b.Cfg.Build.IncludeDraft,
	}); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	tplDir := b.Cfg.ThemePath("templates")
	if err := render.CheckThemeTemplates(tplDir); err != nil {
		return nil, fmt.Errorf("theme %s: %w", b.Cfg.Site.Theme, err)
	}
	catalog, err := i18n.LoadCatalog(b.Cfg.ThemePath("i18n"), locales)
	if err != nil {
		return nil, err
	}
	tpl, err := render.NewTemplateRenderer(render.TemplateOptions{
		Dir:     tplDir,
		Locales: locales,
		Catalog: catalog,
		Now:     func() time.Time { return now },
	})
	if err != nil {
		return nil, fmt.Errorf("load themes(%s): %w", tplDir, err)
	}

	base, err := b.baseFingerprint()
	if err != nil {
		return nil, err
	}
	base.Extra = []string{strconv.Itoa(now.Year())}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	pages := &app.Pages{
		Cfg:          b.Cfg,
		Locales:      locales,
		Index:        st,
		Renderer:     tpl,
		Corpus:       corpus,
		IncludeDraft: b.Cfg.Build.IncludeDraft,
	}
	rb := &app.RouteBuilder{Index: st, Locales: locales}

	written := make(map[string]string)
	keep := make(map[string]struct{})
	for _, lang := range locales.All() {
		metas, err := st.AllMetas(lang)
		if err != nil {
			return nil, err
		}
		routes, err := rb.Routes(lang, metas)
		if err != nil {
			return nil, fmt.Errorf("plan routes(%s): %w", lang, err)
		}
		for _, r := range routes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page, err := pages.Page(ctx, r)
			if errors.Is(err, domainerr.ErrNotFound) {
				log.Debug("skip empty page", zap.Stringer("route", r))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("build %s: %w", r, err)
			}
			keep[r.OutPath] = struct{}{}

			hash, err := pageHash(base, page)
			if err != nil {
				return nil, err
			}
			if old, _ := st.Fingerprint(r.OutPath); old == hash && fileExists(filepath.Join(outDir, r.OutPath)) {
				res.Skipped++
				continue
			}

			htmlBytes, err := page.Render(ctx)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", r, err)
			}
			if err := writeFile(outDir, r.OutPath, htmlBytes); err != nil {
				return nil, err
			}
			written[r.OutPath] = hash
			res.Written++
		}
	}

	if err := b.copyStaticAssets(outDir); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}
	css, err := render.HighlightCSS()
	if err != nil {
		return nil, err
	}
	if err := writeFile(outDir, "highlight.css", css); err != nil {
		return nil, err
	}

	if err := st.PutFingerprints(written); err != nil {
		return nil, err
	}
	if err := st.PruneFingerprints(keep); err != nil {
		return nil, err
	}
	rec := domainbuild.Record{
		ID:        res.BuildID,
		StartedAt: started,
		Duration:  time.Since(started),
		Locales:   locales.All(),
		Articles:  res.Articles,
		Written:   res.Written,
		Skipped:   res.Skipped,
		Warnings:  len(res.Warnings),
	}
	if err := st.PutBuildRecord(rec); err != nil {
		return nil, err
	}

	log.Info("build finished",
		zap.Int("articles", res.Articles),
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("took", rec.Duration),
	)
	return res, nil
}

// baseFingerprint 收集对所有页面都生效的输入
func (b *Builder) baseFingerprint() (domainbuild.Fingerprint, error) {
	themeHash, err := hashTree(b.Cfg.ThemePath())
	if err != nil {
		return domainbuild.Fingerprint{}, fmt.Errorf("hash theme: %w", err)
	}
	conf, err := json.Marshal(struct {
		Site     config.SiteConfig
		I18n     config.I18nConfig
		TOC      config.TOCConfig
		BasePath string
	}{b.Cfg.Site, b.Cfg.I18n, b.Cfg.TOC, b.Cfg.Build.BasePath})
	if err != nil {
		return domainbuild.Fingerprint{}, err
	}
	return domainbuild.Fingerprint{
		ThemeHash:    themeHash,
		ConfigHash:   ingest.HashBytes(conf),
		RendererHash: rendererVersion + "/" + render.HighlightStyle,
	}, nil
}

func pageHash(base domainbuild.Fingerprint, page app.Page) (string, error) {
	data, err := json.Marshal(page.Data)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", page.Route, err)
	}
	fp := base
	fp.ContentHash = ingest.HashBytes(data)
	return fp.RenderHash(), nil
}

// hashTree hashes every file below root with its relative path. A missing
// root hashes to "".
func hashTree(root string) (string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return "", nil
	}
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (b *Builder) copyStaticAssets(outDir string) error {
	src := b.Cfg.ThemePath("static")
	// 如果没有 static 目录就算了
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return writeFile(outDir, rel, in)
	})
}
