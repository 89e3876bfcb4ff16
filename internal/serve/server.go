package serve

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"inkpress/internal/app"
	"inkpress/internal/domain/config"
	"inkpress/internal/i18n"
	"inkpress/internal/index"
	"inkpress/internal/ingest"
	"inkpress/internal/logging"
	"inkpress/internal/render"
	"net/http"
	"strings"
	"sync"
	"time"
)

const liveReloadPath = "/dev/events"

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	locales *i18n.Locales
	idx     *index.Store
	md      *render.MarkdownRenderer

	mu    sync.RWMutex
	pages *app.Pages

	events *hub

	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, log *zap.Logger) (*Server, error) {
	locales, err := i18n.NewLocales(cfg)
	if err != nil {
		return nil, err
	}
	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("serve: failed to open index: %w", err)
	}
	return &Server{
		cfg:     cfg,
		log:     logging.OrNop(log).Named("serve"),
		locales: locales,
		idx:     st,
		md:      render.NewMarkdownRenderer(),
		events:  newHub(),
	}, nil
}

func (s *Server) Close() error {
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	if s.idx != nil {
		err = multierr.Append(err, s.idx.Close())
	}
	return err
}

// Rebuild re-reads sources and theme and swaps in the new pages. Drafts
// are always visible in the dev server.
func (s *Server) Rebuild(ctx context.Context) error {
	started := time.Now()
	arts, warns, err := ingest.Ingest(ctx, ingest.Options{
		SourceDir: s.cfg.Build.SourceDir,
		Locales:   s.locales,
		Location:  s.cfg.Location(),
		Workers:   s.cfg.Build.Workers,
		Log:       s.log,
	})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	for _, w := range warns {
		s.log.Warn(w.Msg, zap.String("path", w.Path))
	}

	corpus, err := app.Prepare(ctx, s.md, arts)
	if err != nil {
		return err
	}

	tplDir := s.cfg.ThemePath("templates")
	if err := render.CheckThemeTemplates(tplDir); err != nil {
		return fmt.Errorf("theme %s: %w", s.cfg.Site.Theme, err)
	}
	catalog, err := i18n.LoadCatalog(s.cfg.ThemePath("i18n"), s.locales)
	if err != nil {
		return err
	}
	tpl, err := render.NewTemplateRenderer(render.TemplateOptions{
		Dir:     tplDir,
		Locales: s.locales,
		Catalog: catalog,
	})
	if err != nil {
		return fmt.Errorf("serve: failed to create template renderer: %w", err)
	}

	s.mu.Lock()
	err = s.idx.Rebuild(arts, index.RebuildOptions{IncludeDraft: true})
	if err == nil {
		s.pages = &app.Pages{
			Cfg:          s.cfg,
			Locales:      s.locales,
			Index:        s.idx,
			Renderer:     tpl,
			Corpus:       corpus,
			IncludeDraft: true,
			LiveReload:   s.basePath() + liveReloadPath,
		}
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("index rebuild: %w", err)
	}

	s.log.Info("rebuild complete",
		zap.Int("articles", len(arts)),
		zap.Int("warnings", len(warns)),
		zap.Duration("took", time.Since(started)),
	)
	s.events.publish("reload")
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}
	if err := s.startWatch(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 支持 ctx 取消
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) basePath() string {
	return strings.TrimSuffix(strings.TrimSpace(s.cfg.Build.BasePath), "/")
}
